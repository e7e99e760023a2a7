package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"soma/internal/container"
	"soma/internal/events"
	"soma/internal/metrics"
	"soma/internal/provider"
	"soma/pkg/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type host struct{ config *store.Store }

func (h host) Config() *store.Store       { return h.config }
func (h host) Paths() *store.Store        { return store.NewFlat(nil) }
func (h host) URLs() *store.Store         { return store.NewFlat(nil) }
func (h host) Events() *events.Dispatcher { return events.NewDispatcher() }
func (h host) Stage() string              { return "production" }
func (h host) IsDebug() bool              { return false }

func build(t *testing.T, m *metrics.Metrics) (*Provider, *container.Container) {
	t.Helper()
	cfg := store.New(map[string]any{"app": map[string]any{"name": "shop", "version": "1.2.0"}})
	p, err := New(host{config: cfg})
	require.NoError(t, err)

	c, err := container.NewBuilder().
		AddDefinitions("internal", container.Definitions{"metrics": container.Value(m)}).
		AddDefinitions(ID, p.(*Provider).Factories()).
		Build()
	require.NoError(t, err)
	return p.(*Provider), c
}

func TestProvider_Bindings(t *testing.T) {
	m := metrics.New()
	_, c := build(t, m)

	reg, err := container.Resolve[*prometheus.Registry](c, "metrics.registry")
	require.NoError(t, err)
	assert.Same(t, m.Registry(), reg)

	h, err := container.Resolve[http.Handler](c, "metrics.handler")
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestProvider_BootPublishesAppInfo(t *testing.T) {
	m := metrics.New()
	p, c := build(t, m)

	require.NoError(t, p.Boot(c))
	require.NoError(t, p.Boot(c), "booting twice must not fail")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `soma_app_info{name="shop",stage="production",version="1.2.0"} 1`)
}

func TestProvider_BootWithoutMetrics(t *testing.T) {
	p, c := build(t, nil)
	assert.NoError(t, p.Boot(c))
}

func TestRegister(t *testing.T) {
	catalog := provider.NewCatalog()
	Register(catalog)
	assert.True(t, catalog.HasProvider(ID))
}
