package itemsdk_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senticor-ai/project-sub002/internal/config"
	"github.com/Senticor-ai/project-sub002/internal/db"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/engine"
	"github.com/Senticor-ai/project-sub002/internal/jsonld"
	"github.com/Senticor-ai/project-sub002/internal/migrate"
	"github.com/Senticor-ai/project-sub002/internal/server"
	itemsdk "github.com/Senticor-ai/project-sub002/sdk/go"
)

func newClient(t *testing.T) *itemsdk.Client {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	_, err = migrate.Migrate(context.Background(), conn)
	require.NoError(t, err)
	handler, err := server.New(server.Config{Engine: engine.New(conn, config.Default())})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		conn.Close()
	})
	return itemsdk.New(srv.URL + "/v0")
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	codec := jsonld.New(jsonld.Config{})

	inbox := codec.NewInbox("renew passport", domain.CaptureSource{})
	created, err := c.CreateItem(ctx, "sdk", codec.ToJSONLD(inbox))
	require.NoError(t, err)
	assert.Equal(t, "sdk", created.Source)

	got, err := c.GetItem(ctx, string(inbox.ID))
	require.NoError(t, err)
	rec, err := got.ItemRecord()
	require.NoError(t, err)
	ent := codec.FromJSONLD(rec)
	a, ok := domain.AsAction(ent)
	require.True(t, ok)
	assert.Equal(t, "renew passport", *a.RawCapture)

	patch, err := codec.BuildTriagePatch(a, jsonld.Triage{Target: jsonld.TriageSomeday})
	require.NoError(t, err)
	_, err = c.PatchItem(ctx, created.ItemID, patch)
	require.NoError(t, err)

	page, err := c.ListItems(ctx, itemsdk.ListOptions{Bucket: "someday"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	_, err = c.ArchiveItem(ctx, codec, created.ItemID, a, nil)
	require.NoError(t, err)
	page, err = c.ListItems(ctx, itemsdk.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	evts, err := c.ItemEvents(ctx, created.ItemID, 10)
	require.NoError(t, err)
	assert.Len(t, evts, 3)
}

func TestClientErrors(t *testing.T) {
	c := newClient(t)
	_, err := c.GetItem(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, itemsdk.IsNotFound(err))

	var apiErr *itemsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Body, "not_found")
}

func TestClientConcurrentUse(t *testing.T) {
	ctx := context.Background()
	shared := newClient(t)
	bare := &itemsdk.Client{BaseURL: shared.BaseURL}
	codec := jsonld.New(jsonld.Config{})

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		c := shared
		if i%2 == 1 {
			c = bare
		}
		it := codec.BuildNewInboxJSONLD(fmt.Sprintf("task %d", i), domain.CaptureSource{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.CreateItem(ctx, "sdk", it)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Nil(t, bare.HTTPClient)

	page, err := shared.ListItems(ctx, itemsdk.ListOptions{Limit: 20})
	require.NoError(t, err)
	assert.Len(t, page.Items, 6)
}
