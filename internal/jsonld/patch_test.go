package jsonld_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/jsonld"
	"github.com/Senticor-ai/project-sub002/internal/opt"
)

func inboxItem() *domain.ActionItem {
	return &domain.ActionItem{
		BaseEntity: domain.BaseEntity{
			ID:         "urn:app:inbox:i1",
			Provenance: domain.NewProvenance(t0),
			Ports:      []domain.Port{{Kind: domain.PortDefinitionOfDone, Criteria: []string{"done"}}},
		},
		Bucket:     domain.BucketInbox,
		RawCapture: strPtr("file taxes"),
		DueDate:    strPtr("2026-04-15"),
	}
}

func propertyIDs(it jsonld.Item) []string {
	ids := make([]string, 0, len(it.AdditionalProperty))
	for _, pv := range it.AdditionalProperty {
		ids = append(ids, pv.PropertyID)
	}
	return ids
}

func TestTriageToNextClearsActionFields(t *testing.T) {
	c := newCodec()
	project := canonid.ID("urn:app:project:tax2025")
	patch, err := c.BuildTriagePatch(inboxItem(), jsonld.Triage{
		Target:      jsonld.TriageNext,
		ProjectID:   &project,
		Contexts:    []canonid.ID{"urn:app:context:desk"},
		EnergyLevel: domain.EnergyHigh,
	})
	require.NoError(t, err)

	assert.Equal(t, jsonld.TypeAction, patch.Type)
	assert.Equal(t, "next", propValue(t, patch, jsonld.PropBucket))
	for _, id := range []string{
		jsonld.PropDueDate, jsonld.PropStartDate, jsonld.PropDelegatedTo,
		jsonld.PropScheduledTime, jsonld.PropSequenceOrder, jsonld.PropRecurrence,
	} {
		assert.Nil(t, propValue(t, patch, id), id)
	}
	assert.Equal(t, []any{"urn:app:context:desk"}, propValue(t, patch, jsonld.PropContexts))
	assert.Equal(t, []any{"urn:app:project:tax2025"}, propValue(t, patch, jsonld.PropProjectRefs))

	var ports []domain.Port
	raw, _ := patch.Property(jsonld.PropPorts)
	require.NoError(t, json.Unmarshal(raw, &ports))
	require.Len(t, ports, 2)
	assert.Equal(t, domain.PortDefinitionOfDone, ports[0].Kind)
	assert.Equal(t, domain.EnergyHigh, ports[1].EnergyLevel)

	m := toMap(t, patch)
	assert.NotContains(t, m, "name")
	assert.NotContains(t, m, "startTime")
	assert.NotContains(t, m, "_schemaVersion")
}

func TestTriageLeavesUnchosenFieldsOut(t *testing.T) {
	c := newCodec()
	patch, err := c.BuildTriagePatch(inboxItem(), jsonld.Triage{Target: jsonld.TriageSomeday})
	require.NoError(t, err)
	ids := propertyIDs(patch)
	assert.NotContains(t, ids, jsonld.PropPorts)
	assert.NotContains(t, ids, jsonld.PropContexts)
	assert.NotContains(t, ids, jsonld.PropProjectRefs)
}

func TestTriageCalendarRequiresDate(t *testing.T) {
	c := newCodec()
	_, err := c.BuildTriagePatch(inboxItem(), jsonld.Triage{Target: jsonld.TriageCalendar})
	require.ErrorIs(t, err, jsonld.ErrCalendarDateRequired)

	patch, err := c.BuildTriagePatch(inboxItem(), jsonld.Triage{
		Target: jsonld.TriageCalendar,
		Date:   strPtr("2026-03-15"),
		Time:   strPtr("09:30"),
	})
	require.NoError(t, err)
	start, ok := patch.StartTime.Get()
	require.True(t, ok)
	assert.Equal(t, "2026-03-15", start)
	assert.Equal(t, "calendar", propValue(t, patch, jsonld.PropBucket))
	assert.Equal(t, "09:30", propValue(t, patch, jsonld.PropScheduledTime))
}

func TestTriageCalendarUsesItemDates(t *testing.T) {
	c := newCodec()
	item := inboxItem()
	item.ScheduledDate = strPtr("2026-05-01")
	patch, err := c.BuildTriagePatch(item, jsonld.Triage{Target: jsonld.TriageCalendar})
	require.NoError(t, err)
	start, _ := patch.StartTime.Get()
	assert.Equal(t, "2026-05-01", start)

	item.StartDate = strPtr("2026-04-20")
	patch, err = c.BuildTriagePatch(item, jsonld.Triage{Target: jsonld.TriageCalendar})
	require.NoError(t, err)
	start, _ = patch.StartTime.Get()
	assert.Equal(t, "2026-04-20", start)
}

func TestTriageToReference(t *testing.T) {
	c := newCodec()
	project := canonid.ID("urn:app:project:tax2025")
	patch, err := c.BuildTriagePatch(inboxItem(), jsonld.Triage{
		Target:      jsonld.TriageReference,
		ProjectID:   &project,
		EnergyLevel: domain.EnergyLow,
		Contexts:    []canonid.ID{"urn:app:context:desk"},
	})
	require.NoError(t, err)

	assert.Equal(t, jsonld.TypeCreativeWork, patch.Type)
	assert.Equal(t, []string{jsonld.PropBucket, jsonld.PropProjectRefs}, propertyIDs(patch))
	assert.Equal(t, "reference", propValue(t, patch, jsonld.PropBucket))
	assert.Equal(t, []any{"urn:app:project:tax2025"}, propValue(t, patch, jsonld.PropProjectRefs))

	bare, err := c.BuildTriagePatch(inboxItem(), jsonld.Triage{Target: jsonld.TriageReference})
	require.NoError(t, err)
	assert.Equal(t, []string{jsonld.PropBucket}, propertyIDs(bare))
}

func TestTriageKeepsActionSubtype(t *testing.T) {
	c := newCodec()
	item := inboxItem()
	item.SchemaType = strPtr("BuyAction")
	patch, err := c.BuildTriagePatch(item, jsonld.Triage{Target: jsonld.TriageWaiting})
	require.NoError(t, err)
	assert.Equal(t, jsonld.TypeBuyAction, patch.Type)

	item.SchemaType = strPtr("DigitalDocument")
	patch, err = c.BuildTriagePatch(item, jsonld.Triage{Target: jsonld.TriageWaiting})
	require.NoError(t, err)
	assert.Equal(t, jsonld.TypeAction, patch.Type)
}

func TestTriageArchive(t *testing.T) {
	c := newCodec()
	item := inboxItem()
	patch, err := c.BuildTriagePatch(item, jsonld.Triage{Target: jsonld.TriageArchive, Note: strPtr("stale")})
	require.NoError(t, err)

	assert.Empty(t, patch.Type)
	assert.Equal(t, "2026-03-01T09:00:00Z", propValue(t, patch, jsonld.PropArchivedAt))
	history, ok := propValue(t, patch, jsonld.PropProvenanceHistory).([]any)
	require.True(t, ok)
	require.Len(t, history, 2)
	assert.Equal(t, "archived", history[1].(map[string]any)["action"])
	assert.Equal(t, 1, item.Provenance.History.Len())
}

func TestTriageUnsupportedTarget(t *testing.T) {
	c := newCodec()
	_, err := c.BuildTriagePatch(inboxItem(), jsonld.Triage{Target: "project"})
	assert.ErrorIs(t, err, jsonld.ErrUnsupportedTriageTarget)
}

func TestReadActionPatch(t *testing.T) {
	item := inboxItem()
	item.FileID = strPtr("file-1")
	item.StartDate = strPtr("2026-03-10")
	item.SequenceOrder = intPtr(3)
	project := canonid.ID("urn:app:project:tax2025")
	patch, err := jsonld.BuildReadActionPatch(item, "urn:app:reference:doc", jsonld.Triage{
		Target:      jsonld.TriageNext,
		ProjectID:   &project,
		Contexts:    []canonid.ID{"urn:app:context:desk"},
		EnergyLevel: domain.EnergyLow,
	})
	require.NoError(t, err)

	assert.Equal(t, jsonld.TypeReadAction, patch.Type)
	require.NotNil(t, patch.Object)
	assert.Equal(t, canonid.ID("urn:app:reference:doc"), patch.Object.ID)
	assert.Equal(t, "next", propValue(t, patch, jsonld.PropBucket))
	for _, id := range []string{
		jsonld.PropDueDate, jsonld.PropStartDate, jsonld.PropDelegatedTo,
		jsonld.PropScheduledTime, jsonld.PropSequenceOrder, jsonld.PropRecurrence,
		jsonld.PropFileID, jsonld.PropDownloadURL,
	} {
		assert.Nil(t, propValue(t, patch, id), id)
	}
	assert.Equal(t, []any{"urn:app:context:desk"}, propValue(t, patch, jsonld.PropContexts))
	assert.Equal(t, []any{"urn:app:project:tax2025"}, propValue(t, patch, jsonld.PropProjectRefs))
	_, ok := patch.Property(jsonld.PropPorts)
	assert.True(t, ok)

	patch, err = jsonld.BuildReadActionPatch(item, "urn:app:reference:doc", jsonld.Triage{Target: jsonld.TriageReference})
	require.NoError(t, err)
	assert.Equal(t, "inbox", propValue(t, patch, jsonld.PropBucket))

	_, err = jsonld.BuildReadActionPatch(&domain.ActionItem{Bucket: domain.BucketInbox}, "urn:app:reference:doc",
		jsonld.Triage{Target: jsonld.TriageCalendar})
	assert.ErrorIs(t, err, jsonld.ErrCalendarDateRequired)
}

func TestTriageNilItem(t *testing.T) {
	c := newCodec()
	for _, target := range []jsonld.TriageTarget{jsonld.TriageNext, jsonld.TriageReference, jsonld.TriageArchive} {
		_, err := c.BuildTriagePatch(nil, jsonld.Triage{Target: target})
		assert.ErrorIs(t, err, jsonld.ErrNoItem, string(target))
	}
	_, err := jsonld.BuildReadActionPatch(nil, "urn:app:reference:doc", jsonld.Triage{})
	assert.ErrorIs(t, err, jsonld.ErrNoItem)
}

func TestItemEditPatchIsSparse(t *testing.T) {
	cases := []struct {
		name    string
		edit    jsonld.ItemEdit
		bagLen  int
		topKeys []string
	}{
		{name: "empty", edit: jsonld.ItemEdit{}, bagLen: 0},
		{
			name:    "first-class only",
			edit:    jsonld.ItemEdit{Description: opt.Some("notes"), Tags: opt.Some([]string{"a"})},
			bagLen:  0,
			topKeys: []string{"description", "keywords"},
		},
		{
			name:   "clear due date",
			edit:   jsonld.ItemEdit{DueDate: opt.Null[string]()},
			bagLen: 1,
		},
		{
			name: "mixed",
			edit: jsonld.ItemEdit{
				Name:          opt.Some("Renamed"),
				DueDate:       opt.Some("2026-03-20"),
				OrgRef:        opt.Null[domain.OrgRef](),
				IsFocused:     opt.Some(false),
				SequenceOrder: opt.Some(0),
			},
			bagLen:  4,
			topKeys: []string{"name"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			patch := jsonld.BuildItemEditPatch(tc.edit)
			assert.Len(t, patch.AdditionalProperty, tc.bagLen)

			m := toMap(t, patch)
			keys := make([]string, 0, len(m))
			for k := range m {
				if k != "additionalProperty" {
					keys = append(keys, k)
				}
			}
			assert.ElementsMatch(t, tc.topKeys, keys)
		})
	}
}

func TestItemEditPatchNullsClear(t *testing.T) {
	patch := jsonld.BuildItemEditPatch(jsonld.ItemEdit{
		DueDate: opt.Null[string](),
		OrgRef:  opt.Null[domain.OrgRef](),
		Name:    opt.Some("  "),
	})
	assert.Nil(t, propValue(t, patch, jsonld.PropDueDate))
	assert.Nil(t, propValue(t, patch, jsonld.PropOrgRef))

	m := toMap(t, patch)
	assert.Contains(t, m, "name")
	assert.Nil(t, m["name"])
}

func TestItemEditPatchOrgRef(t *testing.T) {
	patch := jsonld.BuildItemEditPatch(jsonld.ItemEdit{OrgRef: opt.Some(domain.OrgRef{ID: "org-1", Name: "Acme"})})
	assert.Equal(t, `{"id":"org-1","name":"Acme"}`, propValue(t, patch, jsonld.PropOrgRef))
}

func TestItemEditDecodesPresence(t *testing.T) {
	var e jsonld.ItemEdit
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":null,"description":"x"}`), &e))
	assert.True(t, e.DueDate.IsNull())
	assert.True(t, e.Description.IsSet())
	assert.False(t, e.StartDate.IsPresent())

	patch := jsonld.BuildItemEditPatch(e)
	assert.Equal(t, []string{jsonld.PropDueDate}, propertyIDs(patch))
}
