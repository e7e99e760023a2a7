package provider

import (
	"fmt"
)

// Entry is one registered provider.
type Entry struct {
	ID       string
	Provider Provider
	// Loaded is set once Register and Boot have both run.
	Loaded bool
}

// Registry keeps providers in registration order, keyed by identity.
//
// It has no locking; the application owns it and serialises access.
type Registry struct {
	entries []*Entry
	index   map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*Entry)}
}

// Add registers p under id. It returns false, and changes nothing, when id
// is already registered.
func (r *Registry) Add(id string, p Provider) bool {
	if _, exists := r.index[id]; exists {
		return false
	}
	e := &Entry{ID: id, Provider: p}
	r.entries = append(r.entries, e)
	r.index[id] = e
	return true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Get returns the provider registered as id.
func (r *Registry) Get(id string) (Provider, bool) {
	e, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return e.Provider, true
}

// IsLoaded reports whether id has been registered and booted.
func (r *Registry) IsLoaded(id string) bool {
	e, ok := r.index[id]
	return ok && e.Loaded
}

// MarkLoaded records that id's Register and Boot hooks ran.
func (r *Registry) MarkLoaded(id string) {
	if e, ok := r.index[id]; ok {
		e.Loaded = true
	}
}

// Entries returns every entry in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = *e
	}
	return out
}

// Unloaded returns the entries whose hooks have not run yet, in order.
func (r *Registry) Unloaded() []Entry {
	var out []Entry
	for _, e := range r.entries {
		if !e.Loaded {
			out = append(out, *e)
		}
	}
	return out
}

// IDs returns the registered identities in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.ID
	}
	return ids
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Declared is a provider produced by Normalize.
type Declared struct {
	ID       string
	Provider Provider
}

// Normalize turns a mixed list of identities and instances into providers,
// following Aggregate declarations breadth first. Identities for which
// known returns true, and identities seen earlier in the walk, are skipped,
// which also breaks declaration cycles.
func Normalize(items []any, construct func(id string) (Provider, error), known func(id string) bool) ([]Declared, error) {
	seen := make(map[string]bool)
	isSeen := func(id string) bool {
		return seen[id] || (known != nil && known(id))
	}

	queue := flatten(items)
	var out []Declared
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		var (
			id string
			p  Provider
		)
		switch v := item.(type) {
		case nil:
			continue
		case string:
			if v == "" || isSeen(v) {
				continue
			}
			seen[v] = true
			built, err := construct(v)
			if err != nil {
				return nil, fmt.Errorf("failed to construct provider %s: %w", v, err)
			}
			id, p = Identity(built, v), built
			if id != v && isSeen(id) {
				continue
			}
		default:
			p = v
			id = Identity(p, "")
			if isSeen(id) {
				continue
			}
		}

		seen[id] = true
		out = append(out, Declared{ID: id, Provider: p})

		if agg, ok := p.(Aggregate); ok {
			queue = append(queue, flatten(agg.Providers())...)
		}
	}
	return out, nil
}

func flatten(items []any) []any {
	var out []any
	for _, item := range items {
		switch v := item.(type) {
		case []any:
			out = append(out, flatten(v)...)
		case []string:
			for _, s := range v {
				out = append(out, s)
			}
		default:
			out = append(out, v)
		}
	}
	return out
}
