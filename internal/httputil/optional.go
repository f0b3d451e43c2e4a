package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional tracks presence and value of a JSON PATCH field (RFC 7396),
// which a plain pointer cannot express:
//   - Present=false: field absent (keep the current value)
//   - Present=true, Value=nil: field is null (clear it)
//   - Present=true, Value!=nil: field has a value
type Optional[T any] struct {
	Present bool
	Value   *T
}

// OptionalString is the common case: nullable string references such as
// folderId
type OptionalString = Optional[string]

// Set builds a present Optional holding v
func Set[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: &v}
}

// Null builds a present Optional holding null
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true}
}

// UnmarshalJSON implements json.Unmarshaler.
// It is only called when the field appears in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON writes the value, or null when absent or cleared
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
