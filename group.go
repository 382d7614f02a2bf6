package confgroup

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// Group is one named configuration group: a mutable key/value snapshot plus a dirty flag.
// Mutations stay in memory; they are never written to the cache or the sources.
// Not safe for concurrent mutation.
type Group struct {
	name     string
	values   map[string]any
	modified bool
}

func newGroup(name string, values map[string]any) *Group {
	if values == nil {
		values = make(map[string]any)
	}
	return &Group{name: name, values: values}
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Lookup returns the value at key and whether it is present.
func (g *Group) Lookup(key string) (any, bool) {
	v, ok := g.values[key]
	return v, ok
}

// Get returns the value at key, or def when the key is absent.
// Present zero values (0, "", nil, empty maps) are returned as stored.
func (g *Group) Get(key string, def any) any {
	if v, ok := g.values[key]; ok {
		return v
	}
	return def
}

// Set stores value at key. The group is marked changed when the key was absent
// or the previous value differs.
func (g *Group) Set(key string, value any) {
	old, ok := g.values[key]
	if !ok || !reflect.DeepEqual(old, value) {
		g.modified = true
	}
	g.values[key] = value
}

// Changed reports whether any Set altered a value since the group was opened.
// Once true it stays true.
func (g *Group) Changed() bool {
	return g.modified
}

// AsMap returns a deep copy of the values.
func (g *Group) AsMap() map[string]any {
	return cloneValues(g.values)
}

// Keys returns the keys in sorted order.
func (g *Group) Keys() []string {
	keys := make([]string, 0, len(g.values))
	for k := range g.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode binds the values onto out (a pointer to a struct or map) and validates the result.
// Fields are matched by the `conf` tag or, without one, case-insensitively by name.
// Strings are converted weakly ("30" -> 30, "5s" -> 5*time.Second).
// Struct fields carrying `validate` tags are checked with go-playground/validator.
func (g *Group) Decode(out any) error {
	if out == nil {
		return ErrNilTarget
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "conf",
	})
	if err != nil {
		return fmt.Errorf("decode group %q: %w", g.name, err)
	}

	if err := decoder.Decode(g.AsMap()); err != nil {
		return fmt.Errorf("decode group %q: %w", g.name, err)
	}

	if !isStructTarget(out) {
		return nil
	}

	if err := validator.New().Struct(out); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

func isStructTarget(out any) bool {
	t := reflect.TypeOf(out)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// cloneValues deep-copies nested maps and slices so callers cannot alias shared state.
func cloneValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneValues(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = cloneValue(typed[i])
		}
		return out
	}

	// Typed containers ([]string, map[string]int, ...) keep their type
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneElem(rv.Index(i)))
		}
		return out.Interface()
	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneElem(rv.Index(i)))
		}
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneElem(iter.Value()))
		}
		return out.Interface()
	default:
		return v
	}
}

// cloneElem deep-copies one element of a typed slice, array or map.
func cloneElem(elem reflect.Value) reflect.Value {
	if elem.Kind() == reflect.Interface && elem.IsNil() {
		return elem
	}
	return reflect.ValueOf(cloneValue(elem.Interface()))
}
