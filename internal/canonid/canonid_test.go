package canonid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
)

func TestNewAndParse(t *testing.T) {
	id := canonid.New("app", canonid.Inbox, "a1b2-c3d4")
	assert.Equal(t, canonid.ID("urn:app:inbox:a1b2-c3d4"), id)

	p := canonid.Parse(id)
	assert.Equal(t, "app", p.Namespace)
	assert.Equal(t, canonid.Inbox, p.EntityType)
	assert.Equal(t, "a1b2-c3d4", p.UUID)
}

func TestParseKeepsColonsInUUID(t *testing.T) {
	uuid := "a1b2:c3d4:e5f6"
	id := canonid.New("ns", canonid.Inbox, uuid)
	p := canonid.Parse(id)
	assert.Equal(t, "ns", p.Namespace)
	assert.Equal(t, canonid.Inbox, p.EntityType)
	assert.Equal(t, uuid, p.UUID)
	assert.Equal(t, id, canonid.New(p.Namespace, p.EntityType, p.UUID))
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]canonid.Parts{
		"":                {},
		"garbage":         {},
		"urn:ns":          {Namespace: "ns"},
		"urn:ns:project":  {Namespace: "ns", EntityType: canonid.Project},
		"urn:ns:project:": {Namespace: "ns", EntityType: canonid.Project},
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, canonid.Parse(canonid.ID(in)))
		})
	}
}

func TestEntityTypeForBucket(t *testing.T) {
	assert.Equal(t, canonid.Inbox, canonid.EntityTypeForBucket("inbox"))
	assert.Equal(t, canonid.Action, canonid.EntityTypeForBucket("next"))
	assert.Equal(t, canonid.Waiting, canonid.EntityTypeForBucket("waiting"))
	assert.Equal(t, canonid.Reference, canonid.EntityTypeForBucket("reference"))
	assert.Equal(t, canonid.Action, canonid.EntityTypeForBucket("whatever"))
	assert.True(t, canonid.Tag.Valid())
	assert.False(t, canonid.EntityType("person").Valid())
}
