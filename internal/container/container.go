package container

import (
	"fmt"
	"sort"
	"sync"
)

type state struct {
	mu        sync.RWMutex
	defs      map[string]Definition
	sources   map[string]string
	exts      map[string][]Extension
	instances map[string]any
	aliases   AliasResolver
}

// Container resolves ids to values. Factories receive a view of the
// container that remembers the ids being resolved, which is how cycles are
// detected without goroutine-local state.
type Container struct {
	st    *state
	chain []string
}

func newContainer() *Container {
	return &Container{st: &state{
		defs:      make(map[string]Definition),
		sources:   make(map[string]string),
		exts:      make(map[string][]Extension),
		instances: make(map[string]any),
	}}
}

// Get returns the value for id, building and caching singletons on first use.
func (c *Container) Get(id string) (any, error) {
	return c.resolve(id, false)
}

// Make builds a fresh value for id, bypassing the singleton cache.
func (c *Container) Make(id string) (any, error) {
	return c.resolve(id, true)
}

// Has reports whether id, or the id it is aliased to, is defined.
func (c *Container) Has(id string) bool {
	_, _, ok := c.lookup(id)
	return ok
}

// Set defines id on the live container, replacing any earlier definition
// and dropping its cached value.
func (c *Container) Set(id string, def Definition) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.defs[id] = def
	c.st.sources[id] = "runtime"
	delete(c.st.instances, id)
}

// Define applies a whole definition set to the live container.
func (c *Container) Define(source string, defs Definitions) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	for id, def := range defs {
		c.st.defs[id] = def
		c.st.sources[id] = source
		delete(c.st.instances, id)
	}
}

// Extend adds a decorator for id. An already built singleton is decorated
// immediately.
func (c *Container) Extend(id string, ext Extension) error {
	c.st.mu.Lock()
	c.st.exts[id] = append(c.st.exts[id], ext)
	prev, built := c.st.instances[id]
	c.st.mu.Unlock()

	if !built {
		return nil
	}
	next, err := ext(c.child(id), prev)
	if err != nil {
		return &ResolveError{ID: id, Err: err}
	}
	c.st.mu.Lock()
	c.st.instances[id] = next
	c.st.mu.Unlock()
	return nil
}

// IDs returns every defined id, sorted.
func (c *Container) IDs() []string {
	c.st.mu.RLock()
	defer c.st.mu.RUnlock()
	ids := make([]string, 0, len(c.st.defs))
	for id := range c.st.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Source names the definition set that last defined id.
func (c *Container) Source(id string) string {
	c.st.mu.RLock()
	defer c.st.mu.RUnlock()
	return c.st.sources[id]
}

// Resolve returns the value for id as a T.
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	v, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%q resolved to %T, not %T", id, v, zero)
	}
	return t, nil
}

func (c *Container) lookup(id string) (string, Definition, bool) {
	c.st.mu.RLock()
	def, ok := c.st.defs[id]
	aliases := c.st.aliases
	c.st.mu.RUnlock()
	if ok {
		return id, def, true
	}
	if aliases == nil {
		return "", Definition{}, false
	}
	target, ok := aliases(id)
	if !ok || target == id {
		return "", Definition{}, false
	}
	c.st.mu.RLock()
	def, ok = c.st.defs[target]
	c.st.mu.RUnlock()
	return target, def, ok
}

func (c *Container) child(id string) *Container {
	chain := make([]string, len(c.chain), len(c.chain)+1)
	copy(chain, c.chain)
	return &Container{st: c.st, chain: append(chain, id)}
}

func (c *Container) resolve(id string, fresh bool) (any, error) {
	for _, seen := range c.chain {
		if seen == id {
			return nil, &CycleError{Chain: append(append([]string{}, c.chain...), id)}
		}
	}

	key, def, ok := c.lookup(id)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if key != id {
		return c.child(id).resolve(key, fresh)
	}

	if !fresh {
		c.st.mu.RLock()
		v, cached := c.st.instances[key]
		c.st.mu.RUnlock()
		if cached {
			return v, nil
		}
	}

	scope := c.child(key)
	var (
		v   any
		err error
	)
	switch def.Kind {
	case KindValue:
		v = def.Value
	case KindSingleton, KindTransient:
		if def.Factory == nil {
			return nil, &ResolveError{ID: key, Err: fmt.Errorf("%s definition has no factory", def.Kind)}
		}
		v, err = def.Factory(scope)
		if err != nil {
			return nil, &ResolveError{ID: key, Err: err}
		}
	case KindRef:
		// Extensions of a ref apply on top of its target and are not cached,
		// so the target itself stays unextended.
		v, err = scope.resolve(def.Target, fresh)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &ResolveError{ID: key, Err: fmt.Errorf("unknown definition kind %d", def.Kind)}
	}

	c.st.mu.RLock()
	exts := append([]Extension(nil), c.st.exts[key]...)
	c.st.mu.RUnlock()
	for _, ext := range exts {
		v, err = ext(scope, v)
		if err != nil {
			return nil, &ResolveError{ID: key, Err: err}
		}
	}

	if def.Kind == KindTransient || def.Kind == KindRef || fresh {
		return v, nil
	}

	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if existing, ok := c.st.instances[key]; ok {
		return existing, nil
	}
	c.st.instances[key] = v
	return v, nil
}
