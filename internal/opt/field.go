// Package opt provides a tri-state optional value: absent, null, or set.
//
// A struct field of type Field[T] tagged `json:",omitzero"` is left out of the
// encoded object when absent, encoded as null when null, and as its value
// otherwise. Decoding reverses this: a missing key stays absent, an explicit
// null becomes null.
package opt

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	absent state = iota
	null
	set
)

// Field holds an optional value of type T.
type Field[T any] struct {
	state state
	value T
}

// Some returns a field holding v.
func Some[T any](v T) Field[T] { return Field[T]{state: set, value: v} }

// Null returns an explicitly null field.
func Null[T any]() Field[T] { return Field[T]{state: null} }

// Absent returns the zero field.
func Absent[T any]() Field[T] { return Field[T]{} }

// FromPtr returns Some(*p), or Null when p is nil.
func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return Null[T]()
	}
	return Some(*p)
}

// OmitNil returns Some(*p), or Absent when p is nil.
func OmitNil[T any](p *T) Field[T] {
	if p == nil {
		return Absent[T]()
	}
	return Some(*p)
}

func (f Field[T]) IsPresent() bool { return f.state != absent }
func (f Field[T]) IsNull() bool    { return f.state == null }
func (f Field[T]) IsSet() bool     { return f.state == set }

// IsZero reports absence; it drives the omitzero tag option.
func (f Field[T]) IsZero() bool { return f.state == absent }

// Get returns the value and whether one is set.
func (f Field[T]) Get() (T, bool) { return f.value, f.state == set }

// Ptr returns a pointer to a copy of the value, or nil when not set.
func (f Field[T]) Ptr() *T {
	if f.state != set {
		return nil
	}
	v := f.value
	return &v
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != set {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.state, f.value = null, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.state, f.value = set, v
	return nil
}
