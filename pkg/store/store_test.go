package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetRoundTrip(t *testing.T) {
	s := New(nil)
	s.Set("mail.driver", "smtp")
	s.Set("app.name", "demo")

	assert.Equal(t, "smtp", s.Get("mail.driver", nil))
	assert.Equal(t, "demo", s.Get("app.name", nil))
	assert.Equal(t, map[string]any{"driver": "smtp"}, s.Get("mail", nil))
}

func TestStore_SetDoesNotTouchSiblings(t *testing.T) {
	s := New(map[string]any{
		"mail": map[string]any{"driver": "smtp", "port": 25},
		"app":  map[string]any{"name": "demo"},
	})

	s.Set("mail.driver", "ses")

	assert.Equal(t, 25, s.Get("mail.port", nil))
	assert.Equal(t, "demo", s.Get("app.name", nil))
}

func TestStore_GetDefaultAndNoMutation(t *testing.T) {
	s := New(nil)
	assert.Equal(t, "fallback", s.Get("missing.key", "fallback"))
	assert.False(t, s.Exists("missing"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_SetOverwritesScalarParent(t *testing.T) {
	s := New(map[string]any{"a": "scalar"})
	s.Set("a.b", 1)
	assert.Equal(t, 1, s.Get("a.b", nil))
}

func TestStore_LiteralKeyTakesPrecedence(t *testing.T) {
	s := New(map[string]any{"a.b": "literal", "a": map[string]any{"b": "nested"}})
	assert.Equal(t, "literal", s.Get("a.b", nil))
}

func TestStore_ListIndex(t *testing.T) {
	s := New(map[string]any{"list": []any{"x", "y"}})
	assert.Equal(t, "y", s.Get("list.1", nil))
	assert.False(t, s.Exists("list.5"))
}

func TestStore_ExistsVersusHas(t *testing.T) {
	s := New(nil)
	s.Set("empty", "")
	s.Set("zero", 0)
	s.Set("off", false)
	s.Set("nil", nil)
	s.Set("full", "yes")

	for _, key := range []string{"empty", "zero", "off", "nil"} {
		assert.True(t, s.Exists(key), key)
		assert.False(t, s.Has(key), key)
		assert.False(t, s.Is(key), key)
	}
	assert.True(t, s.Has("full"))
	assert.False(t, s.Has("absent"))
}

func TestStore_RemoveAndPull(t *testing.T) {
	s := New(nil)
	s.Set("a.b", 1)
	s.Set("a.c", 2)

	assert.Equal(t, 1, s.Remove("a.b"))
	assert.False(t, s.Exists("a.b"))
	assert.Equal(t, 2, s.Get("a.c", nil))
	assert.Nil(t, s.Remove("a.b"))

	assert.Equal(t, 2, s.Pull("a.c", nil))
	assert.False(t, s.Exists("a.c"))
	assert.Equal(t, "def", s.Pull("a.c", "def"))
}

func TestStore_PutAll(t *testing.T) {
	s := New(nil)
	s.PutAll(map[string]any{"a.b": 1, "c": "d"})
	assert.Equal(t, 1, s.Get("a.b", nil))
	assert.Equal(t, "d", s.Get("c", nil))
}

func TestStore_IncrementDecrementSymmetry(t *testing.T) {
	tests := []struct {
		name    string
		initial any
		amount  any
	}{
		{"absent", nil, 3},
		{"int", 5, 2},
		{"int64", int64(10), 4},
		{"float", 1.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil)
			if tt.initial != nil {
				s.Set("counter", tt.initial)
			}
			before := s.Get("counter", 0)

			_, err := s.Increment("counter", tt.amount)
			require.NoError(t, err)
			_, err = s.Decrement("counter", tt.amount)
			require.NoError(t, err)

			assert.Equal(t, before, s.Get("counter", nil))
		})
	}
}

func TestStore_IncrementValues(t *testing.T) {
	s := New(nil)
	v, err := s.Increment("hits", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = s.Increment("hits", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = s.Increment("hits", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestStore_IncrementWidensOnOverflow(t *testing.T) {
	tests := []struct {
		name    string
		initial any
		amount  any
		dec     bool
		want    any
	}{
		{name: "uint below zero", initial: uint(1), amount: 2, dec: true, want: int64(-1)},
		{name: "uint8 past max", initial: uint8(250), amount: 10, want: int64(260)},
		{name: "int8 past max", initial: int8(120), amount: 10, want: int64(130)},
		{name: "uint8 in range", initial: uint8(250), amount: 5, want: uint8(255)},
		{name: "int64 overflow", initial: int64(math.MaxInt64), amount: 1, want: float64(1 << 63)},
		{name: "float32 past max", initial: float32(math.MaxFloat32), amount: math.MaxFloat32, want: 2 * float64(float32(math.MaxFloat32))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(map[string]any{"n": tt.initial})
			var (
				v   any
				err error
			)
			if tt.dec {
				v, err = s.Decrement("n", tt.amount)
			} else {
				v, err = s.Increment("n", tt.amount)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.want, s.Get("n", nil))
		})
	}
}

func TestStore_IncrementNonNumeric(t *testing.T) {
	s := New(map[string]any{"name": "demo"})
	_, err := s.Increment("name", 1)
	assert.Error(t, err)
	assert.Equal(t, "demo", s.Get("name", nil))
}

func TestStore_PushPrepend(t *testing.T) {
	s := New(nil)
	s.Push("list", "b").Push("list", "c").Prepend("list", "a")
	assert.Equal(t, []any{"a", "b", "c"}, s.Get("list", nil))

	s.Set("scalar", "x")
	s.Push("scalar", "y")
	assert.Equal(t, []any{"x", "y"}, s.Get("scalar", nil))
}

func TestFlatStore_KeepsDottedKeys(t *testing.T) {
	s := NewFlat(nil)
	s.Set("cache", "/tmp/cache")
	s.Set("cache.app", "/tmp/cache/app")

	assert.Equal(t, "/tmp/cache", s.Get("cache", nil))
	assert.Equal(t, "/tmp/cache/app", s.Get("cache.app", nil))
	assert.Equal(t, []string{"cache", "cache.app"}, s.Keys())
	assert.True(t, s.IsFlat())

	s.Remove("cache")
	assert.Equal(t, "/tmp/cache/app", s.Get("cache.app", nil))
}

func TestStore_Flatten(t *testing.T) {
	s := New(nil)
	s.Set("app.name", "demo")
	s.Set("mail.driver.driver", "smtp")
	s.Set("empty", map[string]any{})

	assert.Equal(t, map[string]any{
		"app.name":           "demo",
		"mail.driver.driver": "smtp",
		"empty":              map[string]any{},
	}, s.Flatten())
}

func TestStore_TypedGetters(t *testing.T) {
	s := New(map[string]any{
		"name":    "demo",
		"port":    int64(8080),
		"debug":   "true",
		"tags":    []any{"a", "b"},
		"aliases": map[string]any{"Cfg": "config"},
	})

	assert.Equal(t, "demo", s.GetString("name", ""))
	assert.Equal(t, "8080", s.GetString("port", ""))
	assert.Equal(t, "x", s.GetString("missing", "x"))
	assert.True(t, s.GetBool("debug", false))
	assert.True(t, s.GetBool("port", false))
	assert.Equal(t, []string{"a", "b"}, s.GetStringSlice("tags"))
	assert.Equal(t, []string{"demo"}, s.GetStringSlice("name"))
	assert.Equal(t, map[string]string{"Cfg": "config"}, s.GetStringMapString("aliases"))
	assert.Nil(t, s.GetStringMap("name"))
}
