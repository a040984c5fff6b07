package jsonld

import (
	"encoding/json"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
	"github.com/Senticor-ai/project-sub002/internal/opt"
)

// Item is a schema.org JSON-LD object as exchanged with the item store. Full
// payloads and partial patches share this type; fields a patch may clear or
// leave untouched are tri-state.
type Item struct {
	ID            canonid.ID `json:"@id,omitempty"`
	Type          SchemaType `json:"@type,omitempty"`
	SchemaVersion int        `json:"_schemaVersion,omitempty"`

	Name         opt.Field[string]   `json:"name,omitzero"`
	Description  opt.Field[string]   `json:"description,omitzero"`
	Keywords     opt.Field[[]string] `json:"keywords,omitzero"`
	DateCreated  string              `json:"dateCreated,omitempty"`
	DateModified string              `json:"dateModified,omitempty"`

	StartTime      opt.Field[string] `json:"startTime,omitzero"`
	EndTime        opt.Field[string] `json:"endTime,omitzero"`
	StartDate      opt.Field[string] `json:"startDate,omitzero"`
	URL            opt.Field[string] `json:"url,omitzero"`
	EncodingFormat opt.Field[string] `json:"encodingFormat,omitzero"`
	Email          opt.Field[string] `json:"email,omitzero"`
	Telephone      opt.Field[string] `json:"telephone,omitzero"`
	JobTitle       opt.Field[string] `json:"jobTitle,omitzero"`

	Object *NodeRef `json:"object,omitempty"`
	Sender *Sender  `json:"sender,omitempty"`

	AdditionalProperty []PropertyValue `json:"additionalProperty,omitempty"`
}

// NodeRef points at another node by id.
type NodeRef struct {
	ID canonid.ID `json:"@id"`
}

// Sender is the originator of an email-derived item.
type Sender struct {
	Type  string `json:"@type,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// PropertyValue is one entry of the additionalProperty bag.
type PropertyValue struct {
	Type       SchemaType      `json:"@type"`
	PropertyID string          `json:"propertyID"`
	Value      json.RawMessage `json:"value"`
}

// ItemRecord is the store's record wrapper around a wire object.
type ItemRecord struct {
	ItemID      string     `json:"item_id"`
	CanonicalID canonid.ID `json:"canonical_id"`
	Source      string     `json:"source"`
	Item        Item       `json:"item"`
	CreatedAt   string     `json:"created_at" format:"date-time"`
	UpdatedAt   string     `json:"updated_at" format:"date-time"`
}

// Property returns the raw value stored under id.
func (it Item) Property(id string) (json.RawMessage, bool) {
	return GetAdditionalProperty(it.AdditionalProperty, id)
}

// IsEmpty reports whether it would marshal to an empty object.
func (it Item) IsEmpty() bool {
	data, err := json.Marshal(it)
	return err == nil && string(data) == "{}"
}

// UnmarshalJSON decodes leniently. A field holding the wrong JSON type reads
// as absent instead of failing the whole object, and an array @type keeps
// its first entry. Only input that is not an object is an error.
func (it *Item) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*it = Item{
		ID:            canonid.ID(rawValue[string](fields["@id"])),
		Type:          rawType(fields["@type"]),
		SchemaVersion: int(rawValue[float64](fields["_schemaVersion"])),

		Name:         rawField[string](fields, "name"),
		Description:  rawField[string](fields, "description"),
		Keywords:     rawField[[]string](fields, "keywords"),
		DateCreated:  rawValue[string](fields["dateCreated"]),
		DateModified: rawValue[string](fields["dateModified"]),

		StartTime:      rawField[string](fields, "startTime"),
		EndTime:        rawField[string](fields, "endTime"),
		StartDate:      rawField[string](fields, "startDate"),
		URL:            rawField[string](fields, "url"),
		EncodingFormat: rawField[string](fields, "encodingFormat"),
		Email:          rawField[string](fields, "email"),
		Telephone:      rawField[string](fields, "telephone"),
		JobTitle:       rawField[string](fields, "jobTitle"),

		Object:             rawNodeRef(fields["object"]),
		Sender:             rawPtr[Sender](fields["sender"]),
		AdditionalProperty: rawProperties(fields["additionalProperty"]),
	}
	return nil
}

func rawValue[T any](raw json.RawMessage) T {
	var v T
	if isNull(raw) || json.Unmarshal(raw, &v) != nil {
		var zero T
		return zero
	}
	return v
}

func rawPtr[T any](raw json.RawMessage) *T {
	if isNull(raw) {
		return nil
	}
	var v T
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return &v
}

func rawField[T any](fields map[string]json.RawMessage, key string) opt.Field[T] {
	raw, ok := fields[key]
	if !ok {
		return opt.Absent[T]()
	}
	if isNull(raw) {
		return opt.Null[T]()
	}
	var v T
	if json.Unmarshal(raw, &v) != nil {
		return opt.Absent[T]()
	}
	return opt.Some(v)
}

func rawType(raw json.RawMessage) SchemaType {
	if s := rawValue[string](raw); s != "" {
		return SchemaType(s)
	}
	for _, s := range rawValue[[]string](raw) {
		if s != "" {
			return SchemaType(s)
		}
	}
	return ""
}

// rawNodeRef accepts {"@id": ...} or a bare id string.
func rawNodeRef(raw json.RawMessage) *NodeRef {
	if ref := rawPtr[NodeRef](raw); ref != nil && ref.ID != "" {
		return ref
	}
	if id := rawValue[string](raw); id != "" {
		return &NodeRef{ID: canonid.ID(id)}
	}
	return nil
}

// rawProperties keeps the well-formed bag entries in order and drops the rest.
func rawProperties(raw json.RawMessage) []PropertyValue {
	var entries []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &entries) != nil {
		return nil
	}
	var out []PropertyValue
	for _, entry := range entries {
		pv := rawPtr[PropertyValue](entry)
		if pv == nil || pv.PropertyID == "" {
			continue
		}
		out = append(out, *pv)
	}
	return out
}
