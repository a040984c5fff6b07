package jsonld

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var jsonNull = json.RawMessage("null")

// Bag accumulates additionalProperty entries in insertion order. Setting the
// same id twice replaces the earlier value in place.
type Bag struct {
	items []PropertyValue
	index map[string]int
	err   error
}

func (b *Bag) put(id string, raw json.RawMessage) {
	if b.index == nil {
		b.index = map[string]int{}
	}
	pv := PropertyValue{Type: TypePropertyValue, PropertyID: id, Value: raw}
	if i, ok := b.index[id]; ok {
		b.items[i] = pv
		return
	}
	b.index[id] = len(b.items)
	b.items = append(b.items, pv)
}

// Set stores v under id.
func (b *Bag) Set(id string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("encode %s: %w", id, err)
		}
		return
	}
	b.put(id, raw)
}

// SetJSONString stores the JSON text of v as a string value.
func (b *Bag) SetJSONString(id string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("encode %s: %w", id, err)
		}
		return
	}
	b.Set(id, string(raw))
}

// Null stores an explicit null under id, which clears the property on patch.
func (b *Bag) Null(id string) { b.put(id, jsonNull) }

// SetPtr stores *p, or nothing when p is nil.
func SetPtr[T any](b *Bag, id string, p *T) {
	if p != nil {
		b.Set(id, *p)
	}
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the accumulated list, or nil when empty.
func (b *Bag) Items() []PropertyValue {
	if len(b.items) == 0 {
		return nil
	}
	return append([]PropertyValue(nil), b.items...)
}

// Err reports the first value that could not be encoded.
func (b *Bag) Err() error { return b.err }

// GetAdditionalProperty returns the value of the first entry whose
// propertyID equals id.
func GetAdditionalProperty(list []PropertyValue, id string) (json.RawMessage, bool) {
	for _, pv := range list {
		if pv.PropertyID == id {
			return pv.Value, true
		}
	}
	return nil, false
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}

// propInto decodes the property into out. Missing, null and malformed values
// leave out untouched and report false.
func propInto(list []PropertyValue, id string, out any) bool {
	raw, ok := GetAdditionalProperty(list, id)
	if !ok || isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func propString(list []PropertyValue, id string) *string {
	var s string
	if !propInto(list, id, &s) {
		return nil
	}
	return &s
}

func propBool(list []PropertyValue, id string) bool {
	var v bool
	propInto(list, id, &v)
	return v
}

func propInt(list []PropertyValue, id string) *int {
	var f float64
	if !propInto(list, id, &f) {
		return nil
	}
	n := int(f)
	return &n
}

// propSlice decodes a list property, normalising empty lists to nil.
func propSlice[T any](list []PropertyValue, id string) []T {
	var out []T
	if !propInto(list, id, &out) || len(out) == 0 {
		return nil
	}
	return out
}

// propJSONString decodes a property whose value is JSON text held in a
// string. A value that is already an object is accepted too.
func propJSONString(list []PropertyValue, id string, out any) bool {
	raw, ok := GetAdditionalProperty(list, id)
	if !ok || isNull(raw) {
		return false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return json.Unmarshal([]byte(text), out) == nil
	}
	return json.Unmarshal(raw, out) == nil
}
