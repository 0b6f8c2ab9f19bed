// -- internal/resolve/attr.go --
package resolve

import "github.com/bimgrid/ifcpanel-cli/api/schemas"

// valueKey is the member a wrapped scalar exposes in loader output.
const valueKey = "value"

// Extract normalizes a single raw attribute value into a plain scalar or nil.
// Loader output wraps some scalars in a record carrying a "value" member and
// leaves others bare; callers never need to care which form they got.
//
// Rules, in order:
//   - nil input yields nil.
//   - a record exposing a "value" member yields that member as-is (the member
//     is a terminal scalar by contract of the loader, no recursive unwrap).
//   - a bare string, bool, or number passes through unchanged.
//   - anything else (record without "value", sequence, ...) yields nil.
//
// Extract is pure and never fails; unrecognized shapes degrade to nil.
// It is idempotent on scalars: extracting an extracted value returns it.
func Extract(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case schemas.RawRecord:
		if inner, ok := val[valueKey]; ok {
			return inner
		}
		return nil
	case map[string]any:
		if inner, ok := val[valueKey]; ok {
			return inner
		}
		return nil
	case string, bool, float64, float32, int, int32, int64, uint, uint32, uint64:
		return val
	default:
		return nil
	}
}

// ExtractString extracts v and reports it as a string when the result is a
// non-empty string.
func ExtractString(v any) (string, bool) {
	s, ok := Extract(v).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ExtractNumber extracts v and coerces the result to a float64 when numeric.
func ExtractNumber(v any) (float64, bool) {
	switch n := Extract(v).(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
