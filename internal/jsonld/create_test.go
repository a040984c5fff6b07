package jsonld_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/jsonld"
)

func TestNewBuildersStampIDAndProvenance(t *testing.T) {
	c := newCodec()
	project := canonid.ID("urn:app:project:house")
	cases := []struct {
		name string
		item jsonld.Item
		id   canonid.ID
		typ  jsonld.SchemaType
	}{
		{"inbox", c.BuildNewInboxJSONLD("call mom", domain.CaptureSource{}), "urn:app:inbox:fixed-uuid", jsonld.TypeAction},
		{"action", c.BuildNewActionJSONLD("Call mom", domain.BucketWaiting, &project), "urn:app:waiting:fixed-uuid", jsonld.TypeAction},
		{"action default bucket", c.BuildNewActionJSONLD("Call mom", "", nil), "urn:app:action:fixed-uuid", jsonld.TypeAction},
		{"project", c.BuildNewProjectJSONLD("Move", "Living in Berlin"), "urn:app:project:fixed-uuid", jsonld.TypeProject},
		{"reference", c.BuildNewReferenceJSONLD("Guide", strPtr("https://example.com")), "urn:app:reference:fixed-uuid", jsonld.TypeCreativeWork},
		{"person", c.BuildNewPersonJSONLD("Ada", strPtr("ada@example.com")), "urn:app:reference:fixed-uuid", jsonld.TypePerson},
		{"orgdoc", c.BuildNewOrgDocJSONLD("Handbook", ""), "urn:app:reference:fixed-uuid", jsonld.TypeCreativeWork},
		{"calendar", c.BuildNewCalendarEntryJSONLD("Dentist", "2026-03-20"), "urn:app:calendar:fixed-uuid", jsonld.TypeEvent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.id, tc.item.ID)
			assert.Equal(t, tc.typ, tc.item.Type)
			assert.Equal(t, jsonld.DefaultSchemaVersion, tc.item.SchemaVersion)
			assert.Equal(t, "2026-03-01T09:00:00Z", tc.item.DateCreated)
			assert.Equal(t, "2026-03-01T09:00:00Z", tc.item.DateModified)

			history, ok := propValue(t, tc.item, jsonld.PropProvenanceHistory).([]any)
			require.True(t, ok)
			require.Len(t, history, 1)
			entry := history[0].(map[string]any)
			assert.Equal(t, "created", entry["action"])
			assert.Equal(t, "2026-03-01T09:00:00Z", entry["timestamp"])
		})
	}
}

func TestNewInboxNeedsEnrichment(t *testing.T) {
	c := newCodec()
	a := c.NewInbox("read the paper", domain.CaptureSource{Kind: domain.CaptureURL, URL: strPtr("https://example.com/p")})
	assert.True(t, a.NeedsEnrichment)
	assert.Equal(t, domain.ConfidenceLow, a.Confidence)
	assert.Equal(t, domain.CaptureURL, a.CaptureSource.Kind)
	assert.NoError(t, domain.Validate(a))

	action := c.NewAction("Read the paper", domain.BucketNext, nil)
	assert.False(t, action.NeedsEnrichment)
	assert.Equal(t, domain.ConfidenceHigh, action.Confidence)
}

func TestNewOrgDocDefaultsType(t *testing.T) {
	c := newCodec()
	d := c.NewOrgDoc("Handbook", "")
	assert.Equal(t, domain.OrgDocGeneral, d.OrgDocType)

	it := c.ToJSONLD(d)
	assert.Equal(t, "orgdoc", propValue(t, it, jsonld.PropReferenceKind))
	assert.Equal(t, "general", propValue(t, it, jsonld.PropOrgDocType))
}

func TestNewFile(t *testing.T) {
	c := newCodec()
	upload := jsonld.FileUpload{
		FileName:       "scan.pdf",
		FileID:         "file-3",
		DownloadURL:    "https://files.example/3",
		EncodingFormat: "application/pdf",
	}
	it := c.BuildNewFileJSONLD(upload)

	assert.Equal(t, jsonld.TypeDigitalDocument, it.Type)
	format, ok := it.EncodingFormat.Get()
	require.True(t, ok)
	assert.Equal(t, "application/pdf", format)
	assert.Equal(t, "inbox", propValue(t, it, jsonld.PropBucket))
	assert.Equal(t, "file-3", propValue(t, it, jsonld.PropFileID))
	assert.Equal(t, map[string]any{"kind": "file", "fileName": "scan.pdf"}, propValue(t, it, jsonld.PropCaptureSource))

	a, ok := domain.AsAction(c.FromItem(it))
	require.True(t, ok)
	assert.Equal(t, domain.BucketInbox, a.Bucket)
	require.NotNil(t, a.SchemaType)
	assert.Equal(t, "DigitalDocument", *a.SchemaType)
	require.NotNil(t, a.DownloadURL)
	assert.Equal(t, "https://files.example/3", *a.DownloadURL)
}

func TestNewEntitiesRoundTrip(t *testing.T) {
	c := newCodec()
	for _, e := range []domain.Entity{
		c.NewInbox("Buy milk", domain.CaptureSource{}),
		c.NewProject("Move", "Living in Berlin"),
		c.NewPerson("Ada", strPtr("ada@example.com")),
		c.NewCalendarEntry("Dentist", "2026-03-20"),
	} {
		assert.Equal(t, e, roundTrip(t, c, e))
	}
}
