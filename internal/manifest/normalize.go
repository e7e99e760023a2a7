package manifest

import (
	"encoding"
	"fmt"
)

// normalizeMap rewrites decoder output into one shape: map[string]any
// mappings, []any sequences and int64 integers. Decoders disagree on all
// three and the compiled cache must round-trip to the same value.
func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeMap(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = val
		}
		return out
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return normalizeValue(float64(t))
	case float64:
		// JSON has no integral float, so 2.0 would come back from the cache as 2.
		if t == float64(int64(t)) && t < 1<<53 && t > -(1<<53) {
			return int64(t)
		}
		return t
	case encoding.TextMarshaler:
		// Dates from YAML and TOML become their textual form, as they would
		// after a pass through the JSON cache.
		if text, err := t.MarshalText(); err == nil {
			return string(text)
		}
	}
	return v
}
