package app

import (
	"context"
	"fmt"

	"soma/internal/events"
	"soma/internal/provider"
	"soma/pkg/logging"
)

// RegisterProvider declares providers. Items are identities resolved through
// the catalog, provider instances, or lists of either. Sub-providers are
// expanded breadth first and an identity is only ever registered once.
//
// Definitions contributed by a provider are queued for the container build,
// or applied to the live container when it already exists. Once the
// application is ready, new providers are registered and booted right away.
func (a *Application) RegisterProvider(items ...any) error {
	declared, err := provider.Normalize(items, func(id string) (provider.Provider, error) {
		return a.catalog.Construct(id, a)
	}, a.providers.Has)
	if err != nil {
		logging.Error("Providers", err, "Failed to resolve providers")
		return err
	}

	for _, d := range declared {
		if !a.providers.Add(d.ID, d.Provider) {
			continue
		}
		if src, ok := d.Provider.(provider.CommandSource); ok {
			if err := a.addCommands(src.Commands()...); err != nil {
				return err
			}
		}
		if err := a.contribute(d.ID, d.Provider); err != nil {
			return err
		}

		logging.Debug("Providers", "Registered provider %s", d.ID)
		if err := a.dispatch(events.ProviderRegistered(d.ID), map[string]any{"provider": d.ID}); err != nil {
			return err
		}
	}

	if a.state == StateReady {
		return a.loadProviders()
	}
	return nil
}

// contribute hands a provider's factories and extensions to the container.
func (a *Application) contribute(id string, p provider.Provider) error {
	if a.container == nil {
		if src, ok := p.(provider.DefinitionSource); ok {
			a.builder.AddDefinitions(id, src.Factories())
		}
		if src, ok := p.(provider.ExtensionSource); ok {
			a.builder.AddExtensions(id, src.Extensions())
		}
		return nil
	}

	if src, ok := p.(provider.DefinitionSource); ok {
		a.container.Define(id, src.Factories())
	}
	if src, ok := p.(provider.ExtensionSource); ok {
		for target, ext := range src.Extensions() {
			if err := a.container.Extend(target, ext); err != nil {
				return fmt.Errorf("provider %s failed to extend %s: %w", id, target, err)
			}
		}
	}
	return nil
}

// loadProviders registers then boots every provider not loaded yet, until
// no hook declares further providers.
func (a *Application) loadProviders() error {
	if a.container == nil {
		return ErrContainerNotReady
	}
	if a.loading {
		return nil
	}
	a.loading = true
	defer func() { a.loading = false }()

	for {
		unloaded := a.providers.Unloaded()
		if len(unloaded) == 0 {
			break
		}

		for _, e := range unloaded {
			r, ok := e.Provider.(provider.Registerer)
			if !ok {
				continue
			}
			err := r.Register(a.container)
			a.metrics.ProviderHook("register", err)
			if err != nil {
				logging.Error("Providers", err, "Failed to register provider %s", e.ID)
				return fmt.Errorf("failed to register provider %s: %w", e.ID, err)
			}
		}

		for _, e := range unloaded {
			if b, ok := e.Provider.(provider.Booter); ok {
				err := b.Boot(a.container)
				a.metrics.ProviderHook("boot", err)
				if err != nil {
					logging.Error("Providers", err, "Failed to boot provider %s", e.ID)
					return fmt.Errorf("failed to boot provider %s: %w", e.ID, err)
				}
			}
			a.providers.MarkLoaded(e.ID)
			logging.Debug("Providers", "Loaded provider %s", e.ID)
			if err := a.dispatch(events.ProviderLoaded(e.ID), map[string]any{"provider": e.ID}); err != nil {
				return err
			}
		}

		if a.state == StateReady {
			if err := a.readyProviders(); err != nil {
				return err
			}
		}
	}

	a.metrics.SetProvidersLoaded(a.providers.Len() - len(a.providers.Unloaded()))
	return nil
}

// readyProviders calls Ready once on every loaded provider.
func (a *Application) readyProviders() error {
	for _, e := range a.providers.Entries() {
		if !e.Loaded || a.readied[e.ID] {
			continue
		}
		a.readied[e.ID] = true
		r, ok := e.Provider.(provider.Readier)
		if !ok {
			continue
		}
		err := r.Ready(a.container)
		a.metrics.ProviderHook("ready", err)
		if err != nil {
			logging.Error("Providers", err, "Ready hook failed for provider %s", e.ID)
			return fmt.Errorf("ready hook failed for provider %s: %w", e.ID, err)
		}
	}
	return nil
}

// InstallProviders runs the install hook of every tracked provider that is
// not installed yet, or only of the provider named by only.
func (a *Application) InstallProviders(ctx context.Context, only string, observe provider.Observer) (*provider.BatchResult, error) {
	return a.runTrack(ctx, provider.OpInstall, only, observe)
}

// RefreshProviders reloads the configuration from source and runs the
// refresh hook of every installed provider.
func (a *Application) RefreshProviders(ctx context.Context, only string, observe provider.Observer) (*provider.BatchResult, error) {
	return a.runTrack(ctx, provider.OpRefresh, only, observe)
}

// UninstallProviders runs the uninstall hook of every installed provider.
func (a *Application) UninstallProviders(ctx context.Context, only string, observe provider.Observer) (*provider.BatchResult, error) {
	return a.runTrack(ctx, provider.OpUninstall, only, observe)
}

func (a *Application) runTrack(ctx context.Context, op provider.Op, only string, observe provider.Observer) (*provider.BatchResult, error) {
	if a.container == nil {
		return nil, ErrContainerNotReady
	}

	targets, err := a.trackTargets(only)
	if err != nil {
		return nil, err
	}

	if err := a.Install(); err != nil {
		return nil, err
	}
	if op == provider.OpRefresh {
		if err := a.LoadConfig(ctx, true); err != nil {
			return nil, err
		}
	}

	state, err := provider.LoadState(a.paths.GetString("installation", ""))
	if err != nil {
		return nil, err
	}

	result, err := provider.RunBatch(ctx, op, targets, state, a.container, observe)
	if result != nil {
		for range result.Ran {
			a.metrics.ProviderHook(string(op), nil)
		}
	}
	if err != nil {
		a.metrics.ProviderHook(string(op), err)
		return result, err
	}
	logging.Info("Providers", "%s finished: %d ran, %d skipped", op, len(result.Ran), len(result.Skipped))
	return result, nil
}

func (a *Application) trackTargets(only string) ([]provider.Target, error) {
	if only == "" {
		entries := a.providers.Entries()
		targets := make([]provider.Target, 0, len(entries))
		for _, e := range entries {
			targets = append(targets, provider.Target{ID: e.ID, Provider: e.Provider})
		}
		return targets, nil
	}

	if p, ok := a.providers.Get(only); ok {
		return []provider.Target{{ID: only, Provider: p}}, nil
	}
	p, err := a.catalog.Construct(only, a)
	if err != nil {
		return nil, err
	}
	return []provider.Target{{ID: only, Provider: p}}, nil
}
