package jsonld

// SchemaType is a schema.org @type value understood by the codec.
type SchemaType string

const (
	TypeAction            SchemaType = "Action"
	TypeReadAction        SchemaType = "ReadAction"
	TypeBuyAction         SchemaType = "BuyAction"
	TypePlanAction        SchemaType = "PlanAction"
	TypeCommunicateAction SchemaType = "CommunicateAction"
	TypeReviewAction      SchemaType = "ReviewAction"
	TypeCreateAction      SchemaType = "CreateAction"
	TypeSendAction        SchemaType = "SendAction"
	TypeCheckAction       SchemaType = "CheckAction"
	TypeProject           SchemaType = "Project"
	TypeCreativeWork      SchemaType = "CreativeWork"
	TypeDigitalDocument   SchemaType = "DigitalDocument"
	TypePerson            SchemaType = "Person"
	TypeEvent             SchemaType = "Event"
	TypePropertyValue     SchemaType = "PropertyValue"
)

// typeFamily groups the known @type values by the domain variant they decode
// to. Every known type has exactly one family; anything else is unknown.
type typeFamily int

const (
	familyUnknown typeFamily = iota
	familyAction
	familyProject
	familyDocument
	familyPerson
	familyEvent
)

var knownTypes = map[SchemaType]typeFamily{
	TypeAction:            familyAction,
	TypeReadAction:        familyAction,
	TypeBuyAction:         familyAction,
	TypePlanAction:        familyAction,
	TypeCommunicateAction: familyAction,
	TypeReviewAction:      familyAction,
	TypeCreateAction:      familyAction,
	TypeSendAction:        familyAction,
	TypeCheckAction:       familyAction,
	TypeProject:           familyProject,
	TypeCreativeWork:      familyDocument,
	TypeDigitalDocument:   familyDocument,
	TypePerson:            familyPerson,
	TypeEvent:             familyEvent,
}

func familyOf(t SchemaType) typeFamily { return knownTypes[t] }

// IsActionType reports whether t is the generic action type, ReadAction, or
// one of the allowed action subtypes.
func IsActionType(t SchemaType) bool { return familyOf(t) == familyAction }

// KnownTypes lists every @type value with a dedicated decode path.
func KnownTypes() []SchemaType {
	out := make([]SchemaType, 0, len(knownTypes))
	for t := range knownTypes {
		out = append(out, t)
	}
	return out
}

// PropertyNamespace prefixes every additionalProperty id.
const PropertyNamespace = "app:"

// Prop builds a namespaced property id.
func Prop(name string) string { return PropertyNamespace + name }

// Property ids carried in additionalProperty.
var (
	PropBucket              = Prop("bucket")
	PropRawCapture          = Prop("rawCapture")
	PropNeedsEnrichment     = Prop("needsEnrichment")
	PropConfidence          = Prop("confidence")
	PropCaptureSource       = Prop("captureSource")
	PropContexts            = Prop("contexts")
	PropIsFocused           = Prop("isFocused")
	PropPorts               = Prop("ports")
	PropTypedReferences     = Prop("typedReferences")
	PropProvenanceHistory   = Prop("provenanceHistory")
	PropProjectRefs         = Prop("projectRefs")
	PropDueDate             = Prop("dueDate")
	PropStartDate           = Prop("startDate")
	PropScheduledTime       = Prop("scheduledTime")
	PropDelegatedTo         = Prop("delegatedTo")
	PropSequenceOrder       = Prop("sequenceOrder")
	PropRecurrence          = Prop("recurrence")
	PropFileID              = Prop("fileId")
	PropDownloadURL         = Prop("downloadUrl")
	PropOrgRef              = Prop("orgRef")
	PropDesiredOutcome      = Prop("desiredOutcome")
	PropProjectStatus       = Prop("projectStatus")
	PropReviewDate          = Prop("reviewDate")
	PropOrigin              = Prop("origin")
	PropNameProvenance      = Prop("nameProvenance")
	PropEmailBody           = Prop("emailBody")
	PropEmailSourceURL      = Prop("emailSourceUrl")
	PropExtractableEntities = Prop("extractableEntities")
	PropArchivedAt          = Prop("archivedAt")
	PropReferenceKind       = Prop("referenceKind")
	PropOrgDocType          = Prop("orgDocType")
	PropOrgRole             = Prop("orgRole")
	PropTime                = Prop("time")
	PropDurationMinutes     = Prop("durationMinutes")
	PropAllDay              = Prop("allDay")
)
