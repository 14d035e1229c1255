package turns

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
)

// Turn is a single conversation record. Fields are optional or conditional by
// speaker role, and values keep whatever type the source document carried.
type Turn map[string]any

// Conversation is an ordered sequence of turn records. Elements are kept as `any`
// so that malformed entries survive decoding and can be reported per position.
type Conversation []any

// Has reports whether the field is present, even with a null value.
func (t Turn) Has(field string) bool {
	_, ok := t[field]
	return ok
}

// Get returns the raw value of a field.
func (t Turn) Get(field string) (any, bool) {
	v, ok := t[field]
	return v, ok
}

// String returns the field as a string if it is present and string-typed.
func (t Turn) String(field string) (string, bool) {
	v, ok := t[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the field as an integer if it is present and integer-typed.
func (t Turn) Int(field string) (int, bool) {
	v, ok := t[field]
	if !ok {
		return 0, false
	}
	return IntValue(v)
}

// Map returns the field as a mapping if it is present and mapping-typed.
func (t Turn) Map(field string) (map[string]any, bool) {
	v, ok := t[field]
	if !ok {
		return nil, false
	}
	return MapValue(v)
}

// Keys returns the field names of the turn in sorted order.
func (t Turn) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the turn.
func (t Turn) Clone() Turn {
	if t == nil {
		return nil
	}
	out := make(Turn, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// AsTurn converts a generic record into a Turn. The second return value is false
// when the record is not a mapping.
func AsTurn(v any) (Turn, bool) {
	m, ok := MapValue(v)
	if !ok {
		return nil, false
	}
	return Turn(m), true
}

// AsConversation converts a decoded root value into an ordered sequence. Strings
// and mappings are not sequences.
func AsConversation(v any) (Conversation, bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case Conversation:
		return s, true
	case []any:
		return Conversation(s), true
	case []Turn:
		out := make(Conversation, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []map[string]any:
		out := make(Conversation, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case string, []byte:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make(Conversation, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// MapValue returns v as a string-keyed mapping.
func MapValue(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case Turn:
		return map[string]any(m), m != nil
	default:
		return nil, false
	}
}

// IntValue returns v as an integer. Booleans are not integers, and floating point
// values only count when they carry no fractional part and did not come from a
// textual decimal (json.Number "1.0" is rejected).
func IntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// floatToInt accepts integral floats that fit in an int64. float64(math.MaxInt64)
// rounds up to 2^63, hence the exclusive upper bound.
func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

// FloatValue returns v as a float64 if it is any numeric type.
func FloatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	if i, ok := IntValue(v); ok {
		return float64(i), true
	}
	return 0, false
}

// TypeName describes the JSON type of a decoded value, used in diagnostics.
func TypeName(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return "integer"
		}
		return "number"
	case float32, float64:
		return "number"
	case map[string]any, Turn:
		return "object"
	}
	if _, ok := IntValue(v); ok {
		return "integer"
	}
	if _, ok := AsConversation(v); ok {
		return "array"
	}
	return reflect.TypeOf(v).String()
}
