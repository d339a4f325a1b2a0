package valueobjects

import (
	"errors"
	"fmt"
)

// FieldSet is the open map of questionnaire attributes on a record. The
// reconciliation and edit logic treats the contents as opaque; only the
// copy semantics matter. A FieldSet handed out by Copy shares no state with
// the original, which is what keeps edit drafts isolated from the committed
// snapshot.
type FieldSet map[string]interface{}

// NewFieldSet creates an empty FieldSet
func NewFieldSet() FieldSet {
	return make(FieldSet)
}

// NewFieldSetFrom creates a FieldSet from a plain map, deep-copying it
func NewFieldSetFrom(m map[string]interface{}) FieldSet {
	if m == nil {
		return NewFieldSet()
	}
	return FieldSet(m).Copy()
}

// Copy returns a deep copy of the FieldSet. Nested maps and slices are
// copied recursively; scalar values are copied by assignment.
func (f FieldSet) Copy() FieldSet {
	out := make(FieldSet, len(f))
	for k, v := range f {
		out[k] = deepCopyValue(v)
	}
	return out
}

// Get returns the value for a key
func (f FieldSet) Get(key string) (interface{}, bool) {
	v, ok := f[key]
	return v, ok
}

// Set stores a value for a key
func (f FieldSet) Set(key string, value interface{}) error {
	if key == "" {
		return errors.New("field key cannot be empty")
	}
	f[key] = value
	return nil
}

// Merge overlays the other FieldSet onto this one, returning a new copy
func (f FieldSet) Merge(other FieldSet) FieldSet {
	out := f.Copy()
	for k, v := range other {
		out[k] = deepCopyValue(v)
	}
	return out
}

// IsEmpty reports whether the FieldSet has no entries
func (f FieldSet) IsEmpty() bool {
	return len(f) == 0
}

// Equals compares two FieldSets by rendered key/value equality. It exists
// for tests and observability, not for business decisions.
func (f FieldSet) Equals(other FieldSet) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		ov, ok := other[k]
		if !ok || fmt.Sprint(ov) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = deepCopyValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = deepCopyValue(inner)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return val
	}
}
