package domain

import (
	"fmt"
	"sort"
	"strings"
)

const metadataJoin = " | "

// SanitizeMetadata flattens metadata into the shapes a vector index accepts:
// strings, booleans, integers, floats and string lists.
//
//   - nil values are dropped
//   - lists of strings are kept; other lists are joined with " | "
//   - maps become "k:v | k:v" with keys sorted and nil values skipped
//   - anything else is stringified
func SanitizeMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	case []string:
		return val
	case []any:
		strs := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return joinAny(val)
			}
			strs = append(strs, s)
		}
		return strs
	case map[string]any:
		return flattenMap(val)
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return flattenMap(m)
	default:
		return fmt.Sprint(val)
	}
}

func joinAny(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprint(item)
	}
	return strings.Join(parts, metadataJoin)
}

func flattenMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%v", k, m[k])
	}
	return strings.Join(parts, metadataJoin)
}

// MetaString returns metadata[key] as a string, or "" when absent or not a string.
func MetaString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	s, _ := metadata[key].(string)
	return s
}
