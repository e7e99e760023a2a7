// Package events exposes the application event dispatcher in the container.
package events

import (
	"soma/internal/container"
	"soma/internal/events"
	"soma/internal/provider"
)

// ID is the catalog identity of the provider.
const ID = "events"

// Provider binds the dispatcher as "events".
type Provider struct {
	dispatcher *events.Dispatcher
}

// New builds the provider for h.
func New(h provider.Host) (provider.Provider, error) {
	return &Provider{dispatcher: h.Events()}, nil
}

// Register adds the provider to c under ID.
func Register(c *provider.Catalog) {
	c.Provide(ID, New)
}

// Name implements provider.Named.
func (p *Provider) Name() string { return ID }

// Factories implements provider.DefinitionSource.
func (p *Provider) Factories() container.Definitions {
	return container.Definitions{
		"events": container.Value(p.dispatcher),
	}
}
