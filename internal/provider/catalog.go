package provider

import (
	"sort"
	"sync"
)

// Catalog maps identities named in configuration to the code that builds
// them. A statically linked binary cannot load providers by name, so every
// provider and command the config may refer to is listed here up front.
type Catalog struct {
	mu        sync.RWMutex
	providers map[string]Constructor
	commands  map[string]Command
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		providers: make(map[string]Constructor),
		commands:  make(map[string]Command),
	}
}

// Provide registers the constructor for id.
func (c *Catalog) Provide(id string, ctor Constructor) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[id] = ctor
	return c
}

// Command registers a console command under its ID.
func (c *Catalog) Command(cmd Command) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands[cmd.ID] = cmd
	return c
}

// Construct builds the provider registered as id.
func (c *Catalog) Construct(id string, h Host) (Provider, error) {
	c.mu.RLock()
	ctor, ok := c.providers[id]
	c.mu.RUnlock()
	if !ok {
		return nil, &UnknownProviderError{ID: id}
	}
	return ctor(h)
}

// HasProvider reports whether id can be constructed.
func (c *Catalog) HasProvider(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.providers[id]
	return ok
}

// LookupCommand returns the command registered as id.
func (c *Catalog) LookupCommand(id string) (Command, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cmd, ok := c.commands[id]
	return cmd, ok
}

// ProviderIDs returns every provider identity, sorted.
func (c *Catalog) ProviderIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.providers))
	for id := range c.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
