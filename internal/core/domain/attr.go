package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// AttrKind identifies which variant an AttrValue holds.
type AttrKind int

const (
	// AttrNull is an absent or JSON null value.
	AttrNull AttrKind = iota

	// AttrScalar is a string, number or boolean.
	AttrScalar

	// AttrList is an ordered sequence of values (a multi-value field).
	AttrList

	// AttrMap is a keyed map (a complex single field).
	AttrMap
)

// String returns the kind name.
func (k AttrKind) String() string {
	switch k {
	case AttrScalar:
		return "scalar"
	case AttrList:
		return "list"
	case AttrMap:
		return "map"
	default:
		return "null"
	}
}

// ExpandKey is the key a scalar is wrapped under when expanded.
const ExpandKey = "value"

// AttrValue is a remote attribute value.
// It is exactly one of null, scalar, list or keyed map.
type AttrValue struct {
	kind   AttrKind
	scalar any
	items  []AttrValue
	fields map[string]AttrValue
}

// Null returns the null value.
func Null() AttrValue {
	return AttrValue{}
}

// Scalar wraps a string, number or boolean.
// A nil argument yields the null value.
func Scalar(v any) AttrValue {
	if v == nil {
		return AttrValue{}
	}
	return AttrValue{kind: AttrScalar, scalar: v}
}

// List builds a sequence value.
func List(items ...AttrValue) AttrValue {
	if items == nil {
		items = []AttrValue{}
	}
	return AttrValue{kind: AttrList, items: items}
}

// Map builds a keyed map value.
func Map(fields map[string]AttrValue) AttrValue {
	if fields == nil {
		fields = map[string]AttrValue{}
	}
	return AttrValue{kind: AttrMap, fields: fields}
}

// Kind returns the variant held.
func (v AttrValue) Kind() AttrKind {
	return v.kind
}

// ScalarValue returns the scalar payload, or nil for other kinds.
func (v AttrValue) ScalarValue() any {
	return v.scalar
}

// Items returns the list elements, or nil for other kinds.
func (v AttrValue) Items() []AttrValue {
	return v.items
}

// Fields returns the map entries, or nil for other kinds.
func (v AttrValue) Fields() map[string]AttrValue {
	return v.fields
}

// Field returns one map entry.
func (v AttrValue) Field(name string) (AttrValue, bool) {
	f, ok := v.fields[name]
	return f, ok
}

// IsEmpty reports whether the value is null, an empty string,
// an empty list or an empty map.
func (v AttrValue) IsEmpty() bool {
	switch v.kind {
	case AttrScalar:
		s, ok := v.scalar.(string)
		return ok && s == ""
	case AttrList:
		return len(v.items) == 0
	case AttrMap:
		return len(v.fields) == 0
	default:
		return true
	}
}

// Expand normalises a value into sequence form.
// A scalar becomes [{value: scalar}], a bare map becomes [map],
// lists and empty values are returned untouched.
func (v AttrValue) Expand() AttrValue {
	if v.IsEmpty() {
		return v
	}
	switch v.kind {
	case AttrScalar:
		return List(Map(map[string]AttrValue{ExpandKey: v}))
	case AttrMap:
		return List(v)
	default:
		return v
	}
}

// Text returns a display string for the value.
// Lists use their first element and maps their "value" entry.
func (v AttrValue) Text() string {
	switch v.kind {
	case AttrScalar:
		if s, ok := v.scalar.(string); ok {
			return s
		}
		return fmt.Sprint(v.scalar)
	case AttrList:
		if len(v.items) == 0 {
			return ""
		}
		return v.items[0].Text()
	case AttrMap:
		if f, ok := v.fields[ExpandKey]; ok {
			return f.Text()
		}
		return ""
	default:
		return ""
	}
}

// Any converts the value back into plain Go values
// (string/json.Number/bool, []any, map[string]any or nil).
func (v AttrValue) Any() any {
	switch v.kind {
	case AttrScalar:
		return v.scalar
	case AttrList:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Any()
		}
		return out
	case AttrMap:
		out := make(map[string]any, len(v.fields))
		for k, f := range v.fields {
			out[k] = f.Any()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts decoded JSON into an AttrValue.
func FromAny(raw any) AttrValue {
	switch t := raw.(type) {
	case nil:
		return Null()
	case []any:
		items := make([]AttrValue, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return List(items...)
	case map[string]any:
		fields := make(map[string]AttrValue, len(t))
		for k, f := range t {
			fields[k] = FromAny(f)
		}
		return Map(fields)
	default:
		return Scalar(t)
	}
}

// MarshalJSON implements json.Marshaler.
func (v AttrValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON implements json.Unmarshaler.
// Numbers are kept as json.Number so they re-encode unchanged.
func (v *AttrValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// Attributes is the attribute set of a record, keyed by remote name.
type Attributes map[string]AttrValue

// UnmarshalJSON implements json.Unmarshaler. Anything but an object,
// such as the empty array some servers send for no attributes, decodes
// as an empty set.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		*a = nil
		return nil
	}
	var fields map[string]AttrValue
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*a = fields
	return nil
}

// Keys returns the attribute names in alphabetical order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Expanded returns a copy with every non-empty value expanded.
func (a Attributes) Expanded() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v.Expand()
	}
	return out
}

// Text returns the display string of one attribute, or "" if absent.
func (a Attributes) Text(name string) string {
	v, ok := a[name]
	if !ok {
		return ""
	}
	return v.Text()
}
