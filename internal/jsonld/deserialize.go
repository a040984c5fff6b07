package jsonld

import (
	"strings"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
	"github.com/Senticor-ai/project-sub002/internal/domain"
)

// FromJSONLD decodes a store record. The record's canonical id and timestamps
// fill in for a wire object that lacks them.
func (c Codec) FromJSONLD(rec ItemRecord) domain.Entity {
	it := rec.Item
	if it.ID == "" {
		it.ID = rec.CanonicalID
	}
	if it.DateCreated == "" {
		it.DateCreated = rec.CreatedAt
	}
	if it.DateModified == "" {
		it.DateModified = rec.UpdatedAt
	}
	return c.FromItem(it)
}

// FromItem decodes a wire object into its domain variant. It never fails:
// unknown types decode as actions and malformed properties fall back to
// defaults.
func (c Codec) FromItem(it Item) domain.Entity {
	bucket := domain.Bucket(deref(propString(it.AdditionalProperty, PropBucket)))

	switch familyOf(it.Type) {
	case familyAction:
		return c.decodeAction(it, bucket)
	case familyProject:
		return decodeProject(it)
	case familyDocument:
		if domain.IsActionBucket(bucket) {
			return c.decodeAction(it, bucket)
		}
		return decodeReference(it)
	case familyPerson:
		return decodePerson(it)
	case familyEvent:
		return decodeCalendarEntry(it)
	default:
		c.log.Debug("jsonld: unknown @type, decoding as action", "id", it.ID, "type", it.Type)
		return c.decodeAction(it, bucket)
	}
}

// IsKnownType reports whether t has a dedicated decode path.
func IsKnownType(t SchemaType) bool { return familyOf(t) != familyUnknown }

func decodeBase(it Item) domain.BaseEntity {
	props := it.AdditionalProperty
	b := domain.BaseEntity{
		ID:              it.ID,
		Name:            ToDomainName(it.Name),
		Description:     it.Description.Ptr(),
		References:      propSlice[domain.TypedReference](props, PropTypedReferences),
		Ports:           propSlice[domain.Port](props, PropPorts),
		FileID:          propString(props, PropFileID),
		DownloadURL:     propString(props, PropDownloadURL),
		NeedsEnrichment: propBool(props, PropNeedsEnrichment),
		Confidence:      decodeConfidence(props),
		CaptureSource:   decodeCaptureSource(it),
		Provenance: domain.Provenance{
			CreatedAt:  it.DateCreated,
			UpdatedAt:  it.DateModified,
			ArchivedAt: propString(props, PropArchivedAt),
		},
	}
	if tags, ok := it.Keywords.Get(); ok && len(tags) > 0 {
		b.Tags = tags
	}
	var history domain.History
	if propInto(props, PropProvenanceHistory, &history) {
		b.Provenance.History = history
	}
	var np domain.NameProvenance
	if propInto(props, PropNameProvenance, &np) {
		b.NameProvenance = &np
	}
	return b
}

func decodeConfidence(props []PropertyValue) domain.Confidence {
	s := propString(props, PropConfidence)
	if s == nil {
		return domain.ConfidenceMedium
	}
	switch c := domain.Confidence(*s); c {
	case domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow:
		return c
	}
	return domain.ConfidenceLow
}

// decodeCaptureSource reads app:captureSource, deriving an email source from
// the sender when the property is missing.
func decodeCaptureSource(it Item) domain.CaptureSource {
	var src domain.CaptureSource
	if propInto(it.AdditionalProperty, PropCaptureSource, &src) && src.Kind != "" {
		return src
	}
	if it.Sender != nil {
		src = domain.CaptureSource{Kind: domain.CaptureEmail}
		if name, ok := it.Name.Get(); ok && strings.TrimSpace(name) != "" {
			src.Subject = &name
		}
		if it.Sender.Email != "" {
			from := it.Sender.Email
			src.From = &from
		}
		return src
	}
	return domain.CaptureSource{Kind: domain.CaptureThought}
}

func (c Codec) decodeAction(it Item, bucket domain.Bucket) *domain.ActionItem {
	props := it.AdditionalProperty
	if !domain.IsActionBucket(bucket) {
		if bucket != "" {
			c.log.Debug("jsonld: unrecognised bucket, using inbox", "id", it.ID, "bucket", bucket)
		}
		bucket = domain.BucketInbox
	}
	a := &domain.ActionItem{
		BaseEntity:          decodeBase(it),
		Bucket:              bucket,
		RawCapture:          propString(props, PropRawCapture),
		Contexts:            propSlice[canonid.ID](props, PropContexts),
		ProjectIDs:          propSlice[canonid.ID](props, PropProjectRefs),
		DelegatedTo:         propString(props, PropDelegatedTo),
		ScheduledDate:       it.StartTime.Ptr(),
		ScheduledTime:       propString(props, PropScheduledTime),
		DueDate:             propString(props, PropDueDate),
		StartDate:           propString(props, PropStartDate),
		IsFocused:           propBool(props, PropIsFocused),
		CompletedAt:         it.EndTime.Ptr(),
		SequenceOrder:       propInt(props, PropSequenceOrder),
		ExtractableEntities: propSlice[string](props, PropExtractableEntities),
	}
	switch {
	case it.Type == TypeReadAction && it.Object != nil && it.Object.ID != "":
		ref := it.Object.ID
		a.ObjectRef = &ref
	case it.Type != TypeAction && it.Type != "":
		st := string(it.Type)
		a.SchemaType = &st
	}
	var rec domain.Recurrence
	if propInto(props, PropRecurrence, &rec) {
		a.Recurrence = &rec
	}
	body, src := propString(props, PropEmailBody), propString(props, PropEmailSourceURL)
	if body != nil || src != nil {
		a.Email = &domain.EmailFields{Body: body, SourceURL: src}
	}
	return a
}

func decodeProject(it Item) *domain.Project {
	props := it.AdditionalProperty
	p := &domain.Project{
		BaseEntity:     decodeBase(it),
		DesiredOutcome: deref(propString(props, PropDesiredOutcome)),
		Status:         domain.ProjectActive,
		IsFocused:      propBool(props, PropIsFocused),
		ReviewDate:     propString(props, PropReviewDate),
		OrgRef:         decodeOrgRef(props),
	}
	if s := propString(props, PropProjectStatus); s != nil {
		switch st := domain.ProjectStatus(*s); st {
		case domain.ProjectActive, domain.ProjectCompleted, domain.ProjectOnHold, domain.ProjectArchived:
			p.Status = st
		}
	}
	return p
}

func decodeOrgRef(props []PropertyValue) *domain.OrgRef {
	var ref domain.OrgRef
	if !propJSONString(props, PropOrgRef, &ref) {
		return nil
	}
	return &ref
}

func decodeReferenceBase(it Item) domain.ReferenceBase {
	props := it.AdditionalProperty
	return domain.ReferenceBase{
		BaseEntity: decodeBase(it),
		Origin:     propString(props, PropOrigin),
		OrgRef:     decodeOrgRef(props),
		ProjectIDs: propSlice[canonid.ID](props, PropProjectRefs),
	}
}

// referenceKind resolves the sub-variant of a reference record: the explicit
// marker when it is valid, otherwise the first shape that matches.
func referenceKind(it Item) domain.ReferenceKind {
	props := it.AdditionalProperty
	if s := propString(props, PropReferenceKind); s != nil {
		switch k := domain.ReferenceKind(*s); k {
		case domain.KindReference, domain.KindPerson, domain.KindOrgDoc:
			return k
		}
	}
	if it.Email.IsSet() || it.Telephone.IsSet() || it.JobTitle.IsSet() {
		return domain.KindPerson
	}
	if _, ok := it.Property(PropOrgRole); ok {
		return domain.KindPerson
	}
	if _, ok := it.Property(PropOrgDocType); ok {
		return domain.KindOrgDoc
	}
	return domain.KindReference
}

func decodeReference(it Item) domain.Entity {
	switch referenceKind(it) {
	case domain.KindPerson:
		return decodePerson(it)
	case domain.KindOrgDoc:
		return decodeOrgDoc(it)
	}
	return &domain.ReferenceMaterial{
		ReferenceBase:  decodeReferenceBase(it),
		URL:            it.URL.Ptr(),
		EncodingFormat: it.EncodingFormat.Ptr(),
	}
}

func decodePerson(it Item) *domain.PersonItem {
	return &domain.PersonItem{
		ReferenceBase: decodeReferenceBase(it),
		Email:         it.Email.Ptr(),
		Telephone:     it.Telephone.Ptr(),
		JobTitle:      it.JobTitle.Ptr(),
		OrgRole:       propString(it.AdditionalProperty, PropOrgRole),
	}
}

func decodeOrgDoc(it Item) *domain.OrgDocItem {
	d := &domain.OrgDocItem{
		ReferenceBase:  decodeReferenceBase(it),
		OrgDocType:     domain.OrgDocGeneral,
		URL:            it.URL.Ptr(),
		EncodingFormat: it.EncodingFormat.Ptr(),
	}
	if s := propString(it.AdditionalProperty, PropOrgDocType); s != nil {
		switch t := domain.OrgDocType(*s); t {
		case domain.OrgDocGeneral, domain.OrgDocUser, domain.OrgDocLog, domain.OrgDocAgent:
			d.OrgDocType = t
		}
	}
	return d
}

func decodeCalendarEntry(it Item) *domain.CalendarEntry {
	props := it.AdditionalProperty
	date, ok := it.StartDate.Get()
	if !ok {
		date, _ = it.StartTime.Get()
	}
	return &domain.CalendarEntry{
		BaseEntity:      decodeBase(it),
		Date:            date,
		Time:            propString(props, PropTime),
		DurationMinutes: propInt(props, PropDurationMinutes),
		AllDay:          propBool(props, PropAllDay),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
