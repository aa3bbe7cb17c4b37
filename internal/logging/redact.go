package logging

import (
	"reflect"
	"strings"
)

// Redacted replaces sensitive values
const Redacted = "***REDACTED***"

var sensitiveKeys = map[string]bool{
	"apikey":      true,
	"secretkey":   true,
	"password":    true,
	"token":       true,
	"credentials": true,
}

// IsSensitive reports whether key names a secret. Matching ignores case.
func IsSensitive(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// Redact returns a copy of params with sensitive values replaced, at the top
// level and inside directly nested objects. The input is not modified.
func Redact(params map[string]any) map[string]any {
	return redact(params, 1)
}

func redact(params map[string]any, depth int) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		if IsSensitive(k) {
			out[k] = Redacted
			continue
		}
		if nested, ok := asMap(v); ok && depth > 0 {
			out[k] = redact(nested, depth-1)
			continue
		}
		out[k] = v
	}
	return out
}

var stringMapType = reflect.TypeOf(map[string]any(nil))

// asMap accepts map[string]any and named map types built on it
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || !rv.Type().ConvertibleTo(stringMapType) {
		return nil, false
	}
	return rv.Convert(stringMapType).Interface().(map[string]any), true
}
