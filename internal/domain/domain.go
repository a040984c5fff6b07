package domain

import (
	"errors"
	"strings"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
)

type Bucket string

const (
	BucketInbox     Bucket = "inbox"
	BucketNext      Bucket = "next"
	BucketWaiting   Bucket = "waiting"
	BucketCalendar  Bucket = "calendar"
	BucketSomeday   Bucket = "someday"
	BucketProject   Bucket = "project"
	BucketReference Bucket = "reference"
)

type CaptureKind string

const (
	CaptureThought   CaptureKind = "thought"
	CaptureEmail     CaptureKind = "email"
	CaptureMeeting   CaptureKind = "meeting"
	CaptureVoice     CaptureKind = "voice"
	CaptureImport    CaptureKind = "import"
	CaptureFile      CaptureKind = "file"
	CaptureURL       CaptureKind = "url"
	CaptureAssistant CaptureKind = "assistant"
)

type ReferenceType string

const (
	RefBlocks      ReferenceType = "blocks"
	RefDependsOn   ReferenceType = "depends_on"
	RefDelegatesTo ReferenceType = "delegates_to"
	RefRefersTo    ReferenceType = "refers_to"
	RefContextOf   ReferenceType = "context_of"
	RefPartOf      ReferenceType = "part_of"
	RefFollows     ReferenceType = "follows"
	RefWaitingOn   ReferenceType = "waiting_on"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectArchived  ProjectStatus = "archived"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

type OrgDocType string

const (
	OrgDocGeneral OrgDocType = "general"
	OrgDocUser    OrgDocType = "user"
	OrgDocLog     OrgDocType = "log"
	OrgDocAgent   OrgDocType = "agent"
)

// ReferenceKind tags the reference sub-variants explicitly.
type ReferenceKind string

const (
	KindReference ReferenceKind = "reference"
	KindPerson    ReferenceKind = "person"
	KindOrgDoc    ReferenceKind = "orgdoc"
)

var ErrNoDisplayName = errors.New("item has neither name nor raw capture")

// CaptureSource records how an entity entered the system. Subject and From
// are only meaningful for email captures.
type CaptureSource struct {
	Kind     CaptureKind `json:"kind"`
	Subject  *string     `json:"subject,omitempty"`
	From     *string     `json:"from,omitempty"`
	URL      *string     `json:"url,omitempty"`
	FileName *string     `json:"fileName,omitempty"`
}

// TypedReference is a directed edge to another entity.
type TypedReference struct {
	Type      ReferenceType `json:"type"`
	TargetID  canonid.ID    `json:"targetId"`
	Note      *string       `json:"note,omitempty"`
	CreatedAt string        `json:"createdAt"`
}

type OrgRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NameProvenance records who set the display name and when.
type NameProvenance struct {
	Setter string `json:"setter"`
	Source string `json:"source,omitempty"`
	SetAt  string `json:"setAt"`
}

type Recurrence struct {
	Kind       string `json:"kind"`
	Interval   int    `json:"interval,omitempty"`
	DaysOfWeek []int  `json:"daysOfWeek,omitempty"`
	DayOfMonth int    `json:"dayOfMonth,omitempty"`
}

type EmailFields struct {
	Body      *string `json:"body,omitempty"`
	SourceURL *string `json:"sourceUrl,omitempty"`
}

// BaseEntity is the shape shared by every variant.
type BaseEntity struct {
	ID              canonid.ID
	Name            *string
	Description     *string
	Tags            []string
	References      []TypedReference
	CaptureSource   CaptureSource
	Provenance      Provenance
	Ports           []Port
	FileID          *string
	DownloadURL     *string
	NeedsEnrichment bool
	Confidence      Confidence
	NameProvenance  *NameProvenance
}

// Entity is the closed union of domain variants.
type Entity interface {
	Base() *BaseEntity
	EntityBucket() Bucket
	entity()
}

type ActionItem struct {
	BaseEntity
	Bucket              Bucket
	RawCapture          *string
	Contexts            []canonid.ID
	ProjectIDs          []canonid.ID
	DelegatedTo         *string
	ScheduledDate       *string
	ScheduledTime       *string
	DueDate             *string
	StartDate           *string
	IsFocused           bool
	Recurrence          *Recurrence
	CompletedAt         *string
	SequenceOrder       *int
	SchemaType          *string
	ObjectRef           *canonid.ID
	Email               *EmailFields
	ExtractableEntities []string
}

type Project struct {
	BaseEntity
	DesiredOutcome string
	Status         ProjectStatus
	IsFocused      bool
	ReviewDate     *string
	OrgRef         *OrgRef
}

// ReferenceBase is embedded by the three reference variants.
type ReferenceBase struct {
	BaseEntity
	Origin     *string
	OrgRef     *OrgRef
	ProjectIDs []canonid.ID
}

type ReferenceMaterial struct {
	ReferenceBase
	URL            *string
	EncodingFormat *string
}

type PersonItem struct {
	ReferenceBase
	Email     *string
	Telephone *string
	JobTitle  *string
	OrgRole   *string
}

type OrgDocItem struct {
	ReferenceBase
	OrgDocType     OrgDocType
	URL            *string
	EncodingFormat *string
}

type CalendarEntry struct {
	BaseEntity
	Date            string
	Time            *string
	DurationMinutes *int
	AllDay          bool
}

func (b *BaseEntity) Base() *BaseEntity { return b }

func (a *ActionItem) EntityBucket() Bucket              { return a.Bucket }
func (*Project) EntityBucket() Bucket                   { return BucketProject }
func (*ReferenceBase) EntityBucket() Bucket             { return BucketReference }
func (*CalendarEntry) EntityBucket() Bucket             { return BucketCalendar }
func (*ReferenceMaterial) ReferenceKind() ReferenceKind { return KindReference }
func (*PersonItem) ReferenceKind() ReferenceKind        { return KindPerson }
func (*OrgDocItem) ReferenceKind() ReferenceKind        { return KindOrgDoc }

func (*ActionItem) entity()        {}
func (*Project) entity()           {}
func (*ReferenceMaterial) entity() {}
func (*PersonItem) entity()        {}
func (*OrgDocItem) entity()        {}
func (*CalendarEntry) entity()     {}

// Reference is implemented by the reference variants.
type Reference interface {
	Entity
	RefBase() *ReferenceBase
	ReferenceKind() ReferenceKind
}

func (r *ReferenceBase) RefBase() *ReferenceBase { return r }

// DisplayName resolves the text shown for an entity: the name when set,
// otherwise the raw capture of an action.
func DisplayName(e Entity) string {
	if n := e.Base().Name; n != nil && strings.TrimSpace(*n) != "" {
		return *n
	}
	if a, ok := e.(*ActionItem); ok && a.RawCapture != nil {
		return *a.RawCapture
	}
	return ""
}

// Validate checks the display invariant: an action needs a name or a raw capture.
func Validate(e Entity) error {
	if DisplayName(e) == "" {
		if _, ok := e.(*ActionItem); ok {
			return ErrNoDisplayName
		}
	}
	return nil
}
