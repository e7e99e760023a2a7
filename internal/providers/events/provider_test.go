package events

import (
	"testing"

	"soma/internal/container"
	"soma/internal/events"
	"soma/internal/provider"
	"soma/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type host struct{ dispatcher *events.Dispatcher }

func (h host) Config() *store.Store       { return store.New(nil) }
func (h host) Paths() *store.Store        { return store.NewFlat(nil) }
func (h host) URLs() *store.Store         { return store.NewFlat(nil) }
func (h host) Events() *events.Dispatcher { return h.dispatcher }
func (h host) Stage() string              { return "testing" }
func (h host) IsDebug() bool              { return false }

func TestProvider_BindsDispatcher(t *testing.T) {
	d := events.NewDispatcher()
	catalog := provider.NewCatalog()
	Register(catalog)

	p, err := catalog.Construct(ID, host{dispatcher: d})
	require.NoError(t, err)
	assert.Equal(t, ID, provider.Identity(p, ""))

	c, err := container.NewBuilder().
		AddDefinitions(ID, p.(provider.DefinitionSource).Factories()).
		Build()
	require.NoError(t, err)

	got, err := container.Resolve[*events.Dispatcher](c, "events")
	require.NoError(t, err)
	assert.Same(t, d, got)
}
