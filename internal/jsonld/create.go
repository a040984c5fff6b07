package jsonld

import (
	"github.com/Senticor-ai/project-sub002/internal/canonid"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/opt"
)

// newBase mints an id for bucket and seeds provenance with a created entry.
func (c Codec) newBase(bucket domain.Bucket, name string) domain.BaseEntity {
	b := domain.BaseEntity{
		ID:            c.NewID(canonid.EntityTypeForBucket(string(bucket))),
		CaptureSource: domain.CaptureSource{Kind: domain.CaptureThought},
		Provenance:    domain.NewProvenance(c.now()),
		Confidence:    domain.ConfidenceHigh,
	}
	if n := ToDomainName(opt.Some(name)); n != nil {
		b.Name = n
	}
	return b
}

// NewInbox captures raw text into the inbox. The item has no name yet and is
// flagged for enrichment.
func (c Codec) NewInbox(rawCapture string, source domain.CaptureSource) *domain.ActionItem {
	a := &domain.ActionItem{
		BaseEntity: c.newBase(domain.BucketInbox, ""),
		Bucket:     domain.BucketInbox,
		RawCapture: &rawCapture,
	}
	if source.Kind != "" {
		a.CaptureSource = source
	}
	a.NeedsEnrichment = true
	a.Confidence = domain.ConfidenceLow
	return a
}

func (c Codec) BuildNewInboxJSONLD(rawCapture string, source domain.CaptureSource) Item {
	return c.ToJSONLD(c.NewInbox(rawCapture, source))
}

// NewAction creates a clarified action in bucket, which defaults to next.
func (c Codec) NewAction(name string, bucket domain.Bucket, projectID *canonid.ID) *domain.ActionItem {
	if !domain.IsActionBucket(bucket) {
		bucket = domain.BucketNext
	}
	a := &domain.ActionItem{
		BaseEntity: c.newBase(bucket, name),
		Bucket:     bucket,
	}
	if projectID != nil {
		a.ProjectIDs = []canonid.ID{*projectID}
	}
	return a
}

func (c Codec) BuildNewActionJSONLD(name string, bucket domain.Bucket, projectID *canonid.ID) Item {
	return c.ToJSONLD(c.NewAction(name, bucket, projectID))
}

func (c Codec) NewProject(name, desiredOutcome string) *domain.Project {
	return &domain.Project{
		BaseEntity:     c.newBase(domain.BucketProject, name),
		DesiredOutcome: desiredOutcome,
		Status:         domain.ProjectActive,
	}
}

func (c Codec) BuildNewProjectJSONLD(name, desiredOutcome string) Item {
	return c.ToJSONLD(c.NewProject(name, desiredOutcome))
}

func (c Codec) newReferenceBase(name string) domain.ReferenceBase {
	return domain.ReferenceBase{BaseEntity: c.newBase(domain.BucketReference, name)}
}

func (c Codec) NewReference(name string, url *string) *domain.ReferenceMaterial {
	return &domain.ReferenceMaterial{
		ReferenceBase: c.newReferenceBase(name),
		URL:           url,
	}
}

func (c Codec) BuildNewReferenceJSONLD(name string, url *string) Item {
	return c.ToJSONLD(c.NewReference(name, url))
}

func (c Codec) NewPerson(name string, email *string) *domain.PersonItem {
	return &domain.PersonItem{
		ReferenceBase: c.newReferenceBase(name),
		Email:         email,
	}
}

func (c Codec) BuildNewPersonJSONLD(name string, email *string) Item {
	return c.ToJSONLD(c.NewPerson(name, email))
}

func (c Codec) NewOrgDoc(name string, docType domain.OrgDocType) *domain.OrgDocItem {
	if docType == "" {
		docType = domain.OrgDocGeneral
	}
	return &domain.OrgDocItem{
		ReferenceBase: c.newReferenceBase(name),
		OrgDocType:    docType,
	}
}

func (c Codec) BuildNewOrgDocJSONLD(name string, docType domain.OrgDocType) Item {
	return c.ToJSONLD(c.NewOrgDoc(name, docType))
}

// FileUpload describes an uploaded file landing in the inbox.
type FileUpload struct {
	FileName       string
	FileID         string
	DownloadURL    string
	EncodingFormat string
}

// NewFile captures an uploaded file as an inbox item typed DigitalDocument.
func (c Codec) NewFile(f FileUpload) *domain.ActionItem {
	fileName := f.FileName
	a := c.NewInbox(f.FileName, domain.CaptureSource{Kind: domain.CaptureFile, FileName: &fileName})
	st := string(TypeDigitalDocument)
	a.SchemaType = &st
	if f.FileID != "" {
		id := f.FileID
		a.FileID = &id
	}
	if f.DownloadURL != "" {
		u := f.DownloadURL
		a.DownloadURL = &u
	}
	return a
}

// BuildNewFileJSONLD also carries the media type, which has no home on the
// action itself.
func (c Codec) BuildNewFileJSONLD(f FileUpload) Item {
	it := c.ToJSONLD(c.NewFile(f))
	if f.EncodingFormat != "" {
		it.EncodingFormat = opt.Some(f.EncodingFormat)
	}
	return it
}

func (c Codec) NewCalendarEntry(name, date string) *domain.CalendarEntry {
	return &domain.CalendarEntry{
		BaseEntity: c.newBase(domain.BucketCalendar, name),
		Date:       date,
	}
}

func (c Codec) BuildNewCalendarEntryJSONLD(name, date string) Item {
	return c.ToJSONLD(c.NewCalendarEntry(name, date))
}
