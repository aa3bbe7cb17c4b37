package resource

import (
	"encoding/json"
	"math"
	"time"
)

// Record is the canonical serialized form of a resource. Field names are part
// of the persistence contract.
type Record map[string]any

// String returns the string stored under key, or "" when absent or not a string
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the integer stored under key. Numbers decoded from JSON arrive
// as float64 and are accepted when they carry no fractional part.
func (r Record) Int(key string) (int, bool) {
	return toInt(r[key])
}

// IntPtr is like Int but returns nil when the value is absent
func (r Record) IntPtr(key string) *int {
	v, ok := r.Int(key)
	if !ok {
		return nil
	}
	return &v
}

// Bool returns the boolean stored under key and whether it was present
func (r Record) Bool(key string) (bool, bool) {
	b, ok := r[key].(bool)
	return b, ok
}

// BoolOr returns the boolean stored under key or def when absent
func (r Record) BoolOr(key string, def bool) bool {
	if b, ok := r.Bool(key); ok {
		return b
	}
	return def
}

// Strings returns a copy of the string list stored under key
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns the nested object stored under key
func (r Record) Map(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	}
	return nil
}

// Has reports whether key is present with a non-nil value
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Clone returns a deep copy of r, normalized through JSON
func (r Record) Clone() (Record, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// nullable maps the empty string to a JSON null
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
