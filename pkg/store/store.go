package store

import (
	"sort"
	"strconv"
	"strings"
)

// Store is a mutable key-value container addressed by dot-separated paths.
//
// A nested Store decomposes "a.b.c" into a mapping of mappings; a flat Store
// keeps every key verbatim so that "cache" and "cache.app" can coexist. The
// zero value is not usable, construct one with New or NewFlat.
//
// Store has no internal locking. The owner serialises access.
type Store struct {
	data map[string]any
	flat bool
}

// New creates a nested Store. The given map is adopted, not copied.
func New(data map[string]any) *Store {
	if data == nil {
		data = make(map[string]any)
	}
	return &Store{data: data}
}

// NewFlat creates a Store whose keys are never split on dots.
func NewFlat(data map[string]any) *Store {
	s := New(data)
	s.flat = true
	return s
}

// IsFlat reports whether keys are stored verbatim.
func (s *Store) IsFlat() bool {
	return s.flat
}

// All returns the underlying data.
func (s *Store) All() map[string]any {
	return s.data
}

// Reset drops every key.
func (s *Store) Reset() *Store {
	s.data = make(map[string]any)
	return s
}

// Len returns the number of top-level keys.
func (s *Store) Len() int {
	return len(s.data)
}

// Keys returns the sorted top-level keys.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value at key, or def when the key is absent. Reading never
// mutates the store.
func (s *Store) Get(key string, def any) any {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return def
}

// Set stores value at key, creating intermediate mappings as needed.
func (s *Store) Set(key string, value any) *Store {
	if s.flat {
		s.data[key] = value
		return s
	}

	segments := strings.Split(key, ".")
	node := s.data
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
	return s
}

// Exists reports whether key is present, regardless of its value.
func (s *Store) Exists(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Has reports whether key is present and its value is non-empty.
func (s *Store) Has(key string) bool {
	v, ok := s.lookup(key)
	return ok && !isEmpty(v)
}

// Is reports whether key is present and truthy.
func (s *Store) Is(key string) bool {
	return s.Has(key)
}

// Remove deletes key and returns the value it held, or nil.
func (s *Store) Remove(key string) any {
	if s.flat {
		v, ok := s.data[key]
		if !ok {
			return nil
		}
		delete(s.data, key)
		return v
	}

	if v, ok := s.data[key]; ok {
		delete(s.data, key)
		return v
	}

	segments := strings.Split(key, ".")
	node := s.data
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			return nil
		}
		node = child
	}
	last := segments[len(segments)-1]
	v, ok := node[last]
	if !ok {
		return nil
	}
	delete(node, last)
	return v
}

// Put stores a single value. It is Set under the name used by bulk callers.
func (s *Store) Put(key string, value any) *Store {
	return s.Set(key, value)
}

// PutAll stores every entry of values. Keys may be dot paths.
func (s *Store) PutAll(values map[string]any) *Store {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Set(k, values[k])
	}
	return s
}

// Replace merges values into the store.
func (s *Store) Replace(values map[string]any) *Store {
	return s.PutAll(values)
}

// Pull returns the value at key and removes it; def is returned when absent.
func (s *Store) Pull(key string, def any) any {
	if !s.Exists(key) {
		return def
	}
	return s.Remove(key)
}

// Increment adds amount to the numeric value at key (0 when absent) and
// returns the updated value. Integer values keep their type.
func (s *Store) Increment(key string, amount any) (any, error) {
	sum, err := addNumbers(s.Get(key, 0), amount)
	if err != nil {
		return nil, err
	}
	s.Set(key, sum)
	return sum, nil
}

// Decrement subtracts amount from the numeric value at key.
func (s *Store) Decrement(key string, amount any) (any, error) {
	neg, err := negate(amount)
	if err != nil {
		return nil, err
	}
	return s.Increment(key, neg)
}

// Prepend inserts value at the front of the sequence stored at key.
func (s *Store) Prepend(key string, value any) *Store {
	list := toList(s.Get(key, nil))
	return s.Set(key, append([]any{value}, list...))
}

// Push appends value to the sequence stored at key.
func (s *Store) Push(key string, value any) *Store {
	list := toList(s.Get(key, nil))
	return s.Set(key, append(list, value))
}

// Flatten returns every leaf keyed by its full dot path. Flat stores return a copy.
func (s *Store) Flatten() map[string]any {
	out := make(map[string]any)
	if s.flat {
		for k, v := range s.data {
			out[k] = v
		}
		return out
	}
	flattenInto(out, "", s.data)
	return out
}

func flattenInto(out map[string]any, prefix string, node map[string]any) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok && len(child) > 0 {
			flattenInto(out, key, child)
			continue
		}
		out[key] = v
	}
}

func (s *Store) lookup(key string) (any, bool) {
	if v, ok := s.data[key]; ok {
		return v, true
	}
	if s.flat || !strings.Contains(key, ".") {
		return nil, false
	}

	var node any = s.data
	for _, seg := range strings.Split(key, ".") {
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[seg]
			if !ok {
				return nil, false
			}
			node = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(n) {
				return nil, false
			}
			node = n[idx]
		default:
			return nil, false
		}
	}
	return node, true
}
