// Package metrics exposes the application Prometheus registry in the
// container and publishes an info gauge describing the running application.
package metrics

import (
	"errors"
	"fmt"

	"soma/internal/container"
	"soma/internal/metrics"
	"soma/internal/provider"
	"soma/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
)

// ID is the catalog identity of the provider.
const ID = "metrics"

// Provider binds "metrics.registry" and "metrics.handler".
type Provider struct {
	name    string
	version string
	stage   string
}

// New builds the provider for h.
func New(h provider.Host) (provider.Provider, error) {
	return &Provider{
		name:    h.Config().GetString("app.name", "soma"),
		version: h.Config().GetString("app.version", "dev"),
		stage:   h.Stage(),
	}, nil
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
		"metrics.registry": container.Singleton(func(c *container.Container) (any, error) {
			m, err := container.Resolve[*metrics.Metrics](c, "metrics")
			if err != nil {
				return nil, err
			}
			return m.Registry(), nil
		}),
		"metrics.handler": container.Singleton(func(c *container.Container) (any, error) {
			m, err := container.Resolve[*metrics.Metrics](c, "metrics")
			if err != nil {
				return nil, err
			}
			return m.Handler(), nil
		}),
	}
}

// Boot registers the soma_app_info gauge.
func (p *Provider) Boot(c *container.Container) error {
	m, err := container.Resolve[*metrics.Metrics](c, "metrics")
	if err != nil {
		return err
	}
	if m == nil {
		logging.Debug("Metrics", "No metrics registry configured, skipping app info")
		return nil
	}

	info := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "soma_app_info",
		Help: "Name, version and stage of the running application",
		ConstLabels: prometheus.Labels{
			"name":    p.name,
			"version": p.version,
			"stage":   p.stage,
		},
	}, func() float64 { return 1 })

	if err := m.Registry().Register(info); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return nil
		}
		return fmt.Errorf("failed to register app info: %w", err)
	}
	return nil
}
