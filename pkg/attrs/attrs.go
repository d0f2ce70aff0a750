// Package attrs helps tests and consumers pick values out of the flat
// key-value detail slices attached to audit events.
package attrs

// ExtractString returns the string value stored under key in a
// [key1, value1, key2, value2, ...] slice. Returns empty string when the
// key is absent or the value is not a string.
func ExtractString(attrs []any, key string) string {
	for i := 0; i < len(attrs)-1; i += 2 {
		k, ok := attrs[i].(string)
		if !ok {
			continue
		}
		if k == key {
			if v, ok := attrs[i+1].(string); ok {
				return v
			}
		}
	}
	return ""
}

// ExtractUint64 returns the uint64 value stored under key, or zero when the
// key is absent or holds a different type.
func ExtractUint64(attrs []any, key string) uint64 {
	for i := 0; i < len(attrs)-1; i += 2 {
		k, ok := attrs[i].(string)
		if !ok {
			continue
		}
		if k == key {
			if v, ok := attrs[i+1].(uint64); ok {
				return v
			}
		}
	}
	return 0
}
