package jsonld

import (
	"errors"
	"fmt"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/opt"
)

var (
	ErrCalendarDateRequired    = errors.New("calendar triage requires a date")
	ErrUnsupportedTriageTarget = errors.New("unsupported triage target")
	ErrNoItem                  = errors.New("triage needs an item")
)

// TriageTarget is where an inbox item goes: one of the action buckets,
// reference, or archive.
type TriageTarget string

const (
	TriageNext      TriageTarget = "next"
	TriageWaiting   TriageTarget = "waiting"
	TriageCalendar  TriageTarget = "calendar"
	TriageSomeday   TriageTarget = "someday"
	TriageReference TriageTarget = "reference"
	TriageArchive   TriageTarget = "archive"
)

// Triage carries the choices made while clarifying an item.
type Triage struct {
	Target      TriageTarget
	Date        *string
	Time        *string
	ProjectID   *canonid.ID
	Contexts    []canonid.ID
	EnergyLevel domain.EnergyLevel
	Note        *string
}

// BuildTriagePatch returns the partial payload that moves item to t.Target.
// A calendar target needs a date from t.Date or the item's own start or
// scheduled date.
func (c Codec) BuildTriagePatch(item *domain.ActionItem, t Triage) (Item, error) {
	if item == nil {
		return Item{}, ErrNoItem
	}
	switch t.Target {
	case TriageNext, TriageWaiting, TriageSomeday, TriageCalendar:
		return buildActionTriage(item, t)
	case TriageReference:
		var bag Bag
		bag.Set(PropBucket, domain.BucketReference)
		if t.ProjectID != nil {
			bag.Set(PropProjectRefs, []canonid.ID{*t.ProjectID})
		}
		return Item{Type: TypeCreativeWork, AdditionalProperty: bag.Items()}, nil
	case TriageArchive:
		now := c.now()
		prov := item.Provenance.Archive(now, t.Note)
		var bag Bag
		bag.Set(PropArchivedAt, *prov.ArchivedAt)
		bag.Set(PropProvenanceHistory, prov.History)
		return Item{DateModified: prov.UpdatedAt, AdditionalProperty: bag.Items()}, nil
	}
	return Item{}, fmt.Errorf("%w: %q", ErrUnsupportedTriageTarget, t.Target)
}

func buildActionTriage(item *domain.ActionItem, t Triage) (Item, error) {
	patch, bag, err := actionTriage(item, t)
	if err != nil {
		return Item{}, err
	}
	patch.AdditionalProperty = bag.Items()
	return patch, nil
}

// actionTriage clears the scheduling fields an action carries from its old
// bucket and applies the project, contexts and energy chosen in t.
func actionTriage(item *domain.ActionItem, t Triage) (Item, Bag, error) {
	var date *string
	if t.Target == TriageCalendar {
		date = firstNonEmpty(t.Date, item.StartDate, item.ScheduledDate)
		if date == nil {
			return Item{}, Bag{}, ErrCalendarDateRequired
		}
	}

	patch := Item{Type: actionPatchType(item)}
	if date != nil {
		patch.StartTime = opt.Some(*date)
	}

	var bag Bag
	bag.Set(PropBucket, domain.Bucket(t.Target))
	bag.Null(PropDueDate)
	bag.Null(PropStartDate)
	bag.Null(PropDelegatedTo)
	if t.Target == TriageCalendar && t.Time != nil {
		bag.Set(PropScheduledTime, *t.Time)
	} else {
		bag.Null(PropScheduledTime)
	}
	bag.Null(PropSequenceOrder)
	bag.Null(PropRecurrence)
	if t.EnergyLevel != "" {
		bag.Set(PropPorts, domain.MergeEnergyLevel(item.Ports, t.EnergyLevel))
	}
	if t.Contexts != nil {
		bag.Set(PropContexts, t.Contexts)
	}
	if t.ProjectID != nil {
		bag.Set(PropProjectRefs, []canonid.ID{*t.ProjectID})
	}
	return patch, bag, nil
}

// actionPatchType keeps a read action or an action subtype through triage;
// anything else becomes a plain Action.
func actionPatchType(item *domain.ActionItem) SchemaType {
	if item.ObjectRef != nil {
		return TypeReadAction
	}
	if item.SchemaType != nil && IsActionType(SchemaType(*item.SchemaType)) {
		return SchemaType(*item.SchemaType)
	}
	return TypeAction
}

func firstNonEmpty(candidates ...*string) *string {
	for _, p := range candidates {
		if p != nil && *p != "" {
			return p
		}
	}
	return nil
}

// BuildReadActionPatch turns item into "read this reference" and triages it
// like BuildTriagePatch does for an action bucket. A target outside the
// action buckets keeps the item's current bucket. The file attachment moves to
// the reference, so it is cleared here.
func BuildReadActionPatch(item *domain.ActionItem, referenceID canonid.ID, t Triage) (Item, error) {
	if item == nil {
		return Item{}, ErrNoItem
	}
	if !domain.IsActionBucket(domain.Bucket(t.Target)) {
		t.Target = TriageTarget(item.Bucket)
	}
	if !domain.IsActionBucket(domain.Bucket(t.Target)) {
		t.Target = TriageTarget(domain.BucketInbox)
	}
	patch, bag, err := actionTriage(item, t)
	if err != nil {
		return Item{}, err
	}
	bag.Null(PropFileID)
	bag.Null(PropDownloadURL)
	patch.Type = TypeReadAction
	patch.Object = &NodeRef{ID: referenceID}
	patch.AdditionalProperty = bag.Items()
	return patch, nil
}

// ItemEdit is a sparse edit. Only present fields are written; a null field
// clears the stored value.
type ItemEdit struct {
	Name           opt.Field[string]   `json:"name,omitzero"`
	Description    opt.Field[string]   `json:"description,omitzero"`
	Tags           opt.Field[[]string] `json:"tags,omitzero"`
	ScheduledDate  opt.Field[string]   `json:"scheduledDate,omitzero"`
	CompletedAt    opt.Field[string]   `json:"completedAt,omitzero"`
	URL            opt.Field[string]   `json:"url,omitzero"`
	EncodingFormat opt.Field[string]   `json:"encodingFormat,omitzero"`
	Email          opt.Field[string]   `json:"email,omitzero"`
	Telephone      opt.Field[string]   `json:"telephone,omitzero"`
	JobTitle       opt.Field[string]   `json:"jobTitle,omitzero"`

	DueDate         opt.Field[string]                `json:"dueDate,omitzero"`
	StartDate       opt.Field[string]                `json:"startDate,omitzero"`
	ScheduledTime   opt.Field[string]                `json:"scheduledTime,omitzero"`
	Contexts        opt.Field[[]canonid.ID]          `json:"contexts,omitzero"`
	ProjectIDs      opt.Field[[]canonid.ID]          `json:"projectIds,omitzero"`
	DelegatedTo     opt.Field[string]                `json:"delegatedTo,omitzero"`
	IsFocused       opt.Field[bool]                  `json:"isFocused,omitzero"`
	SequenceOrder   opt.Field[int]                   `json:"sequenceOrder,omitzero"`
	Recurrence      opt.Field[domain.Recurrence]     `json:"recurrence,omitzero"`
	DesiredOutcome  opt.Field[string]                `json:"desiredOutcome,omitzero"`
	ProjectStatus   opt.Field[domain.ProjectStatus]  `json:"projectStatus,omitzero"`
	ReviewDate      opt.Field[string]                `json:"reviewDate,omitzero"`
	OrgRef          opt.Field[domain.OrgRef]         `json:"orgRef,omitzero"`
	Origin          opt.Field[string]                `json:"origin,omitzero"`
	OrgRole         opt.Field[string]                `json:"orgRole,omitzero"`
	OrgDocType      opt.Field[domain.OrgDocType]     `json:"orgDocType,omitzero"`
	NeedsEnrichment opt.Field[bool]                  `json:"needsEnrichment,omitzero"`
	NameProvenance  opt.Field[domain.NameProvenance] `json:"nameProvenance,omitzero"`
}

// BuildItemEditPatch emits a wire field or property for each present field of
// e and nothing else. A blank name clears the name.
func BuildItemEditPatch(e ItemEdit) Item {
	var patch Item
	if e.Name.IsPresent() {
		if n := ToDomainName(e.Name); n != nil {
			patch.Name = opt.Some(*n)
		} else {
			patch.Name = opt.Null[string]()
		}
	}
	patch.Description = e.Description
	patch.Keywords = e.Tags
	patch.StartTime = e.ScheduledDate
	patch.EndTime = e.CompletedAt
	patch.URL = e.URL
	patch.EncodingFormat = e.EncodingFormat
	patch.Email = e.Email
	patch.Telephone = e.Telephone
	patch.JobTitle = e.JobTitle

	var bag Bag
	putField(&bag, PropDueDate, e.DueDate)
	putField(&bag, PropStartDate, e.StartDate)
	putField(&bag, PropScheduledTime, e.ScheduledTime)
	putField(&bag, PropContexts, e.Contexts)
	putField(&bag, PropProjectRefs, e.ProjectIDs)
	putField(&bag, PropDelegatedTo, e.DelegatedTo)
	putField(&bag, PropIsFocused, e.IsFocused)
	putField(&bag, PropSequenceOrder, e.SequenceOrder)
	putField(&bag, PropRecurrence, e.Recurrence)
	putField(&bag, PropDesiredOutcome, e.DesiredOutcome)
	putField(&bag, PropProjectStatus, e.ProjectStatus)
	putField(&bag, PropReviewDate, e.ReviewDate)
	if e.OrgRef.IsPresent() {
		if ref, ok := e.OrgRef.Get(); ok {
			bag.SetJSONString(PropOrgRef, ref)
		} else {
			bag.Null(PropOrgRef)
		}
	}
	putField(&bag, PropOrigin, e.Origin)
	putField(&bag, PropOrgRole, e.OrgRole)
	putField(&bag, PropOrgDocType, e.OrgDocType)
	putField(&bag, PropNeedsEnrichment, e.NeedsEnrichment)
	putField(&bag, PropNameProvenance, e.NameProvenance)
	patch.AdditionalProperty = bag.Items()
	return patch
}

func putField[T any](bag *Bag, id string, f opt.Field[T]) {
	if !f.IsPresent() {
		return
	}
	if v, ok := f.Get(); ok {
		bag.Set(id, v)
		return
	}
	bag.Null(id)
}
