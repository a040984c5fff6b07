package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senticor-ai/project-sub002/internal/domain"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestHistoryAppendDoesNotShareStorage(t *testing.T) {
	h := domain.NewHistory(domain.ProvenanceEntry{Timestamp: "a", Action: domain.ActionCreated})
	h1 := h.Append(domain.ProvenanceEntry{Timestamp: "b", Action: domain.ActionMoved})
	h2 := h.Append(domain.ProvenanceEntry{Timestamp: "c", Action: domain.ActionRenamed})

	assert.Equal(t, 1, h.Len())
	require.Equal(t, 2, h1.Len())
	require.Equal(t, 2, h2.Len())
	assert.Equal(t, domain.ActionMoved, h1.Entries()[1].Action)
	assert.Equal(t, domain.ActionRenamed, h2.Entries()[1].Action)

	entries := h1.Entries()
	entries[0].Action = domain.ActionArchived
	assert.Equal(t, domain.ActionCreated, h1.Entries()[0].Action)
}

func TestHistoryJSON(t *testing.T) {
	b, err := json.Marshal(domain.History{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	h := domain.NewProvenance(t0).History
	b, err = json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"timestamp":"2026-03-01T09:00:00Z","action":"created"}]`, string(b))

	var back domain.History
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, h, back)
}

func TestProvenanceRecordAndArchive(t *testing.T) {
	p := domain.NewProvenance(t0)
	later := t0.Add(time.Hour)
	p2 := p.Record(later, domain.ProvenanceEntry{Action: domain.ActionMoved, From: strPtr("inbox"), To: strPtr("next")})
	assert.Equal(t, "2026-03-01T10:00:00Z", p2.UpdatedAt)
	assert.Equal(t, "2026-03-01T09:00:00Z", p2.CreatedAt)
	assert.Equal(t, 2, p2.History.Len())
	assert.Equal(t, 1, p.History.Len())

	p3 := p2.Archive(later, nil)
	require.NotNil(t, p3.ArchivedAt)
	last, ok := p3.History.Last()
	require.True(t, ok)
	assert.Equal(t, domain.ActionArchived, last.Action)
	assert.Equal(t, 3, p3.History.Len())
}

func TestMergeEnergyLevel(t *testing.T) {
	ports := []domain.Port{{Kind: domain.PortDefinitionOfDone, Criteria: []string{"filed"}}}
	merged := domain.MergeEnergyLevel(ports, domain.EnergyHigh)
	require.Len(t, merged, 2)
	assert.Equal(t, domain.EnergyHigh, merged[1].EnergyLevel)
	assert.Len(t, ports, 1)

	again := domain.MergeEnergyLevel(merged, domain.EnergyLow)
	require.Len(t, again, 2)
	assert.Equal(t, domain.EnergyLow, again[1].EnergyLevel)
	assert.Equal(t, domain.EnergyHigh, merged[1].EnergyLevel)
}

func TestDisplayNameAndValidate(t *testing.T) {
	a := &domain.ActionItem{Bucket: domain.BucketInbox, RawCapture: strPtr("Buy milk")}
	assert.Equal(t, "Buy milk", domain.DisplayName(a))
	assert.NoError(t, domain.Validate(a))

	a.Name = strPtr("Groceries")
	assert.Equal(t, "Groceries", domain.DisplayName(a))

	empty := &domain.ActionItem{Bucket: domain.BucketInbox, BaseEntity: domain.BaseEntity{Name: strPtr("  ")}}
	assert.ErrorIs(t, domain.Validate(empty), domain.ErrNoDisplayName)

	assert.NoError(t, domain.Validate(&domain.Project{}))
}

func TestTypeGuards(t *testing.T) {
	var entities = []domain.Entity{
		&domain.ActionItem{Bucket: domain.BucketNext},
		&domain.Project{},
		&domain.ReferenceMaterial{},
		&domain.PersonItem{},
		&domain.OrgDocItem{},
		&domain.CalendarEntry{},
	}
	refs := 0
	for _, e := range entities {
		if domain.IsReferenceEntity(e) {
			refs++
			_, ok := domain.AsReference(e)
			assert.True(t, ok)
		}
	}
	assert.Equal(t, 3, refs)

	_, ok := domain.AsPerson(entities[3])
	assert.True(t, ok)
	_, ok = domain.AsOrgDoc(entities[3])
	assert.False(t, ok)
	_, ok = domain.AsAction(entities[0])
	assert.True(t, ok)
	_, ok = domain.AsCalendarEntry(entities[5])
	assert.True(t, ok)

	assert.True(t, domain.IsActionBucket(domain.BucketCalendar))
	assert.False(t, domain.IsActionBucket(domain.BucketReference))
	assert.True(t, domain.IsKnownBucket(domain.BucketProject))
	assert.False(t, domain.IsKnownBucket("archive"))
}
