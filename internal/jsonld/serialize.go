package jsonld

import (
	"strings"

	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/opt"
)

// ToJSONLD renders e as a complete wire object. The result depends only on e
// and the codec's schema version.
func (c Codec) ToJSONLD(e domain.Entity) Item {
	b := e.Base()
	it := Item{
		ID:            b.ID,
		SchemaVersion: c.schemaVersion,
		Name:          opt.OmitNil(ToDomainName(opt.OmitNil(b.Name))),
		Description:   opt.FromPtr(b.Description),
		Keywords:      opt.Some(orEmpty(b.Tags)),
		DateCreated:   b.Provenance.CreatedAt,
		DateModified:  b.Provenance.UpdatedAt,
	}
	var bag Bag
	bag.Set(PropBucket, e.EntityBucket())
	writeBase(&bag, b)

	switch v := e.(type) {
	case *domain.ActionItem:
		writeAction(&it, &bag, v)
	case *domain.Project:
		writeProject(&it, &bag, v)
	case *domain.PersonItem:
		writePerson(&it, &bag, v)
	case *domain.OrgDocItem:
		writeOrgDoc(&it, &bag, v)
	case *domain.ReferenceMaterial:
		writeReference(&it, &bag, v)
	case *domain.CalendarEntry:
		writeCalendarEntry(&it, &bag, v)
	}

	if err := bag.Err(); err != nil {
		c.log.Error("jsonld: property encoding failed", "id", b.ID, "err", err)
	}
	it.AdditionalProperty = bag.Items()
	return it
}

func writeBase(bag *Bag, b *domain.BaseEntity) {
	bag.Set(PropNeedsEnrichment, b.NeedsEnrichment)
	confidence := b.Confidence
	if confidence == "" {
		confidence = domain.ConfidenceMedium
	}
	bag.Set(PropConfidence, confidence)
	source := b.CaptureSource
	if source.Kind == "" {
		source.Kind = domain.CaptureThought
	}
	bag.Set(PropCaptureSource, source)
	bag.Set(PropPorts, orEmpty(b.Ports))
	bag.Set(PropTypedReferences, orEmpty(b.References))
	bag.Set(PropProvenanceHistory, b.Provenance.History)
	SetPtr(bag, PropFileID, b.FileID)
	SetPtr(bag, PropDownloadURL, b.DownloadURL)
	SetPtr(bag, PropNameProvenance, b.NameProvenance)
	SetPtr(bag, PropArchivedAt, b.Provenance.ArchivedAt)
}

func writeAction(it *Item, bag *Bag, a *domain.ActionItem) {
	switch {
	case a.ObjectRef != nil:
		it.Type = TypeReadAction
		it.Object = &NodeRef{ID: *a.ObjectRef}
	case a.SchemaType != nil && *a.SchemaType != "":
		it.Type = SchemaType(*a.SchemaType)
	default:
		it.Type = TypeAction
	}
	it.StartTime = opt.OmitNil(a.ScheduledDate)
	it.EndTime = opt.OmitNil(a.CompletedAt)

	SetPtr(bag, PropRawCapture, a.RawCapture)
	bag.Set(PropContexts, orEmpty(a.Contexts))
	bag.Set(PropIsFocused, a.IsFocused)
	bag.Set(PropProjectRefs, orEmpty(a.ProjectIDs))
	SetPtr(bag, PropDueDate, a.DueDate)
	SetPtr(bag, PropStartDate, a.StartDate)
	SetPtr(bag, PropScheduledTime, a.ScheduledTime)
	SetPtr(bag, PropDelegatedTo, a.DelegatedTo)
	SetPtr(bag, PropRecurrence, a.Recurrence)
	SetPtr(bag, PropSequenceOrder, a.SequenceOrder)
	if a.Email != nil {
		SetPtr(bag, PropEmailBody, a.Email.Body)
		SetPtr(bag, PropEmailSourceURL, a.Email.SourceURL)
	}
	if len(a.ExtractableEntities) > 0 {
		bag.Set(PropExtractableEntities, a.ExtractableEntities)
	}
}

func writeProject(it *Item, bag *Bag, p *domain.Project) {
	it.Type = TypeProject
	bag.Set(PropDesiredOutcome, p.DesiredOutcome)
	status := p.Status
	if status == "" {
		status = domain.ProjectActive
	}
	bag.Set(PropProjectStatus, status)
	bag.Set(PropIsFocused, p.IsFocused)
	SetPtr(bag, PropReviewDate, p.ReviewDate)
	if p.OrgRef != nil {
		bag.SetJSONString(PropOrgRef, p.OrgRef)
	}
}

func writeReferenceBase(bag *Bag, kind domain.ReferenceKind, r *domain.ReferenceBase) {
	bag.Set(PropReferenceKind, kind)
	SetPtr(bag, PropOrigin, r.Origin)
	if r.OrgRef != nil {
		bag.SetJSONString(PropOrgRef, r.OrgRef)
	}
	if len(r.ProjectIDs) > 0 {
		bag.Set(PropProjectRefs, r.ProjectIDs)
	}
}

func writePerson(it *Item, bag *Bag, p *domain.PersonItem) {
	it.Type = TypePerson
	it.Email = opt.OmitNil(p.Email)
	it.Telephone = opt.OmitNil(p.Telephone)
	it.JobTitle = opt.OmitNil(p.JobTitle)
	writeReferenceBase(bag, domain.KindPerson, &p.ReferenceBase)
	SetPtr(bag, PropOrgRole, p.OrgRole)
}

func writeOrgDoc(it *Item, bag *Bag, d *domain.OrgDocItem) {
	it.Type = TypeCreativeWork
	it.URL = opt.OmitNil(d.URL)
	it.EncodingFormat = opt.OmitNil(d.EncodingFormat)
	writeReferenceBase(bag, domain.KindOrgDoc, &d.ReferenceBase)
	docType := d.OrgDocType
	if docType == "" {
		docType = domain.OrgDocGeneral
	}
	bag.Set(PropOrgDocType, docType)
}

func writeReference(it *Item, bag *Bag, r *domain.ReferenceMaterial) {
	it.Type = TypeCreativeWork
	it.URL = opt.OmitNil(r.URL)
	it.EncodingFormat = opt.OmitNil(r.EncodingFormat)
	writeReferenceBase(bag, domain.KindReference, &r.ReferenceBase)
}

func writeCalendarEntry(it *Item, bag *Bag, ce *domain.CalendarEntry) {
	it.Type = TypeEvent
	it.StartDate = opt.Some(ce.Date)
	SetPtr(bag, PropTime, ce.Time)
	SetPtr(bag, PropDurationMinutes, ce.DurationMinutes)
	bag.Set(PropAllDay, ce.AllDay)
}

// ToDomainName normalises a stored name: null, missing, empty and
// whitespace-only names all become nil so display falls back to the raw
// capture.
func ToDomainName(name opt.Field[string]) *string {
	v, ok := name.Get()
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
