package confgroup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGroup(values map[string]any) *Group {
	return newGroup("test", values)
}

func TestGroup_Get(t *testing.T) {
	g := testGroup(map[string]any{
		"timeout": 10,
		"zero":    0,
		"empty":   "",
		"nested":  map[string]any{},
		"nothing": nil,
	})

	assert.Equal(t, 10, g.Get("timeout", 99))
	assert.Equal(t, "fallback", g.Get("missing", "fallback"))
	assert.Nil(t, g.Get("missing", nil))

	// Falsy but present values must not fall back
	assert.Equal(t, 0, g.Get("zero", "fallback"))
	assert.Equal(t, "", g.Get("empty", "fallback"))
	assert.Equal(t, map[string]any{}, g.Get("nested", "fallback"))
	assert.Nil(t, g.Get("nothing", "fallback"))
}

func TestGroup_Lookup(t *testing.T) {
	g := testGroup(map[string]any{"nothing": nil})

	v, ok := g.Lookup("nothing")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = g.Lookup("missing")
	assert.False(t, ok)
}

func TestGroup_Name(t *testing.T) {
	assert.Equal(t, "database", newGroup("database", nil).Name())
}

func TestGroup_NilValues(t *testing.T) {
	g := newGroup("g", nil)

	assert.Empty(t, g.AsMap())
	g.Set("k", "v")
	assert.Equal(t, "v", g.Get("k", nil))
}

func TestGroup_Set(t *testing.T) {
	tests := []struct {
		name        string
		initial     map[string]any
		key         string
		value       any
		wantChanged bool
	}{
		{"new value", map[string]any{"timeout": 10}, "timeout", 30, true},
		{"absent key", map[string]any{}, "timeout", 30, true},
		{"absent key with nil", map[string]any{}, "timeout", nil, true},
		{"same scalar", map[string]any{"timeout": 10}, "timeout", 10, false},
		{"same string", map[string]any{"host": "db"}, "host", "db", false},
		{"different type same text", map[string]any{"port": 80}, "port", "80", true},
		{"int vs int64", map[string]any{"port": 80}, "port", int64(80), true},
		{"equal nested map", map[string]any{"pool": map[string]any{"max": 1}}, "pool", map[string]any{"max": 1}, false},
		{"different nested map", map[string]any{"pool": map[string]any{"max": 1}}, "pool", map[string]any{"max": 2}, true},
		{"equal slice", map[string]any{"tags": []any{"a"}}, "tags", []any{"a"}, false},
		{"nil over zero", map[string]any{"n": 0}, "n", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGroup(tt.initial)
			require.False(t, g.Changed())

			g.Set(tt.key, tt.value)

			assert.Equal(t, tt.wantChanged, g.Changed())
			assert.Equal(t, tt.value, g.Get(tt.key, "absent"))
		})
	}
}

func TestGroup_SetIdempotent(t *testing.T) {
	g := testGroup(map[string]any{"timeout": 10})

	g.Set("timeout", 10)
	first := g.Changed()
	g.Set("timeout", 10)

	assert.Equal(t, first, g.Changed())
	assert.False(t, g.Changed())
}

// TestGroup_ChangedIsMonotonic verifies the flag never returns to false.
func TestGroup_ChangedIsMonotonic(t *testing.T) {
	g := testGroup(map[string]any{"timeout": 10})

	g.Set("timeout", 30)
	require.True(t, g.Changed())

	g.Set("timeout", 10) // back to the original value
	assert.True(t, g.Changed())

	g.Set("timeout", 10)
	assert.True(t, g.Changed())
}

func TestGroup_AsMapIsCopy(t *testing.T) {
	g := testGroup(map[string]any{
		"host": "localhost",
		"pool": map[string]any{"max": 10},
		"tags": []any{"a", map[string]any{"b": 1}},
	})

	snapshot := g.AsMap()
	snapshot["host"] = "mutated"
	snapshot["pool"].(map[string]any)["max"] = 99
	snapshot["tags"].([]any)[1].(map[string]any)["b"] = 2
	snapshot["new"] = true

	assert.Equal(t, "localhost", g.Get("host", nil))
	assert.Equal(t, map[string]any{"max": 10}, g.Get("pool", nil))
	assert.Equal(t, []any{"a", map[string]any{"b": 1}}, g.Get("tags", nil))
	_, ok := g.Lookup("new")
	assert.False(t, ok)
	assert.False(t, g.Changed())
}

func TestGroup_AsMapCopiesTypedContainers(t *testing.T) {
	g := testGroup(map[string]any{
		"hosts":   []string{"a", "b"},
		"ports":   map[string]int{"x": 1},
		"matrix":  [][]int{{1, 2}},
		"fixed":   [2]string{"p", "q"},
		"servers": map[string][]string{"eu": {"e1"}},
		"mixed":   []map[string]any{{"k": "v"}},
	})

	snapshot := g.AsMap()
	snapshot["hosts"].([]string)[0] = "mutated"
	snapshot["ports"].(map[string]int)["x"] = 99
	snapshot["matrix"].([][]int)[0][0] = 99
	snapshot["servers"].(map[string][]string)["eu"][0] = "mutated"
	snapshot["mixed"].([]map[string]any)[0]["k"] = "mutated"

	assert.Equal(t, []string{"a", "b"}, g.Get("hosts", nil))
	assert.Equal(t, map[string]int{"x": 1}, g.Get("ports", nil))
	assert.Equal(t, [][]int{{1, 2}}, g.Get("matrix", nil))
	assert.Equal(t, [2]string{"p", "q"}, g.Get("fixed", nil))
	assert.Equal(t, map[string][]string{"eu": {"e1"}}, g.Get("servers", nil))
	assert.Equal(t, []map[string]any{{"k": "v"}}, g.Get("mixed", nil))
	assert.False(t, g.Changed())
}

func TestCloneValue_NilAndScalars(t *testing.T) {
	var nilSlice []string
	var nilMap map[string]int

	assert.Nil(t, cloneValue(nil))
	assert.Equal(t, 42, cloneValue(42))
	assert.Equal(t, nilSlice, cloneValue(nilSlice))
	assert.Equal(t, nilMap, cloneValue(nilMap))
	assert.Equal(t, []any{nil, "a"}, cloneValue([]any{nil, "a"}))
	assert.Equal(t, []error{nil}, cloneValue([]error{nil}))
}

func TestGroup_Keys(t *testing.T) {
	g := testGroup(map[string]any{"port": 1, "host": 2, "driver": 3})
	assert.Equal(t, []string{"driver", "host", "port"}, g.Keys())
}

func TestGroup_Decode(t *testing.T) {
	type Database struct {
		Host    string        `conf:"host" validate:"required"`
		Port    int           `conf:"port" validate:"min=1,max=65535"`
		Timeout time.Duration `conf:"timeout"`
		Tags    []string      `conf:"tags"`
		Options struct {
			SSL bool `conf:"ssl"`
		} `conf:"options"`
	}

	g := testGroup(map[string]any{
		"host":    "db.local",
		"port":    "5432",
		"timeout": "5s",
		"tags":    "primary,eu",
		"options": map[string]any{"ssl": "true"},
	})

	var db Database
	require.NoError(t, g.Decode(&db))

	assert.Equal(t, "db.local", db.Host)
	assert.Equal(t, 5432, db.Port)
	assert.Equal(t, 5*time.Second, db.Timeout)
	assert.Equal(t, []string{"primary", "eu"}, db.Tags)
	assert.True(t, db.Options.SSL)
}

func TestGroup_DecodeValidation(t *testing.T) {
	type Database struct {
		Host string `conf:"host" validate:"required"`
		Port int    `conf:"port" validate:"min=1024"`
	}

	g := testGroup(map[string]any{"port": 80})

	var db Database
	err := g.Decode(&db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestGroup_DecodeMap(t *testing.T) {
	g := testGroup(map[string]any{"a": "1", "b": "2"})

	var out map[string]string
	require.NoError(t, g.Decode(&out))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, out)
}

func TestGroup_DecodeErrors(t *testing.T) {
	g := testGroup(map[string]any{"port": "not-a-number"})

	assert.ErrorIs(t, g.Decode(nil), ErrNilTarget)

	var cfg struct {
		Port int `conf:"port"`
	}
	err := g.Decode(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `decode group "test"`)
}

func TestGroup_DecodeDoesNotMutate(t *testing.T) {
	g := testGroup(map[string]any{"port": "5432"})

	var cfg struct {
		Port int `conf:"port"`
	}
	require.NoError(t, g.Decode(&cfg))

	assert.Equal(t, "5432", g.Get("port", nil))
	assert.False(t, g.Changed())
}
