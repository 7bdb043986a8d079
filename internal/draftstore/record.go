package draftstore

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record is a draft: field key -> value. A nil value means the field is
// known but has no value.
type Record map[string]any

// Patch is a partial write. Keys missing from a patch are never touched.
type Patch map[string]any

// Clone returns a shallow copy safe for the caller to mutate.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a new record with patch applied on top of r.
func (r Record) Merge(p Patch) Record {
	out := make(Record, len(r)+len(p))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String returns the value at key as a string. Absent and nil values yield "".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Bool reports whether the value at key is truthy.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

// Int returns the value at key as an int64. Records that went through JSON
// hold numbers as float64; numeric strings are accepted too.
func (r Record) Int(key string) int64 {
	switch v := r[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Decode copies the record into a typed value through its JSON form.
func Decode(r Record, out any) error {
	if r == nil {
		return nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// Encode turns a typed value into a patch through its JSON form.
func Encode(v any) (Patch, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var p Patch
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("value is not an object: %w", err)
	}
	return p, nil
}
