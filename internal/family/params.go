package family

import "vmforge/internal/resource"

// Params is a loosely typed attribute map as received from callers. Each
// factory reads only the keys relevant to its provider; unknown keys are
// ignored and missing keys yield zero values.
type Params map[string]any

// String returns the first non-empty string found under key or its fallbacks
func (p Params) String(key string, fallbacks ...string) string {
	for _, k := range append([]string{key}, fallbacks...) {
		if s, ok := p[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Int returns the first integer found under key or its fallbacks
func (p Params) Int(key string, fallbacks ...string) int {
	for _, k := range append([]string{key}, fallbacks...) {
		if v, ok := resource.Record(p).Int(k); ok {
			return v
		}
	}
	return 0
}

// IntPtr returns the integer under key, or nil when absent
func (p Params) IntPtr(key string) *int {
	return resource.Record(p).IntPtr(key)
}

// Bool returns the boolean under key, false when absent
func (p Params) Bool(key string) bool {
	b, _ := resource.Record(p).Bool(key)
	return b
}

// BoolPtr returns the boolean under key, or nil when absent
func (p Params) BoolPtr(key string) *bool {
	b, ok := resource.Record(p).Bool(key)
	if !ok {
		return nil
	}
	return &b
}

// Strings returns a copy of the string list under key
func (p Params) Strings(key string) []string {
	return resource.Record(p).Strings(key)
}

// Map returns the nested parameter object under key, or nil when absent
func (p Params) Map(key string) Params {
	if nested, ok := p[key].(Params); ok {
		return nested
	}
	return Params(resource.Record(p).Map(key))
}

// Has reports whether key is present with a non-nil value
func (p Params) Has(key string) bool {
	return resource.Record(p).Has(key)
}

// Clone returns a shallow copy of p
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge performs a shallow, field-by-field merge. Later layers take precedence
// over earlier ones; nil values in a later layer do not erase earlier values.
func Merge(layers ...Params) Params {
	out := Params{}
	for _, layer := range layers {
		for k, v := range layer {
			if v == nil {
				continue
			}
			out[k] = v
		}
	}
	return out
}
