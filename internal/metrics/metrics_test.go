package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStep("config", time.Millisecond, nil)
		m.ObserveBootstrap(time.Second)
		m.ManifestLoaded(true)
		m.ProviderHook("boot", nil)
		m.SetProvidersLoaded(3)
		m.EventDispatched("app.ready")
		m.CacheCleared("manifests")
		m.RecordRequest("GET", "/healthz", "200", time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := New()

	m.ManifestLoaded(true)
	m.ManifestLoaded(false)
	m.ManifestLoaded(false)
	m.ProviderHook("install", errors.New("boom"))
	m.ObserveStep("config", time.Millisecond, errors.New("missing"))
	m.ObserveBootstrap(time.Second)
	m.SetProvidersLoaded(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ManifestLoads.WithLabelValues("cache")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ManifestLoads.WithLabelValues("source")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderHooks.WithLabelValues("install", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BootstrapFailures.WithLabelValues("config")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ready))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProvidersLoaded))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.CacheCleared("manifests")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `soma_cache_clears_total{cache="manifests"} 1`)
}
