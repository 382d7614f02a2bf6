package confgroup

import (
	"math"
	"reflect"
)

// plainValues converts merged values to the types every Cache can store faithfully:
// string, bool, int, float64, nil, []any and map[string]any. Integer kinds become int,
// float32 becomes float64, typed slices and string-keyed maps become []any and map[string]any.
// Anything else (time.Time, pointers, ...) is kept as is.
func plainValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch typed := v.(type) {
	case nil, string, bool, int, float64:
		return v
	case map[string]any:
		return plainValues(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = plainValue(typed[i])
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt {
			return int(u)
		}
		return v
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any(nil)
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = plainValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = plainValue(iter.Value().Interface())
		}
		return out
	default:
		return v
	}
}
