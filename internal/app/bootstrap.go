package app

import (
	"context"
	"fmt"
	"time"

	"soma/internal/container"
	"soma/internal/env"
	"soma/internal/events"
	"soma/pkg/logging"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

// Bootstrap drives the application from Uninitialized to Ready:
//
//  1. Load .env and the APP_* environment, resolve root path and URL
//  2. Set the stage and emit app.environment
//  3. Configure error handling
//  4. Derive the storage, cache and public paths
//  5. Install the alias resolver
//  6. Load configuration and emit app.config
//  7. Merge app.paths, app.urls, app.aliases, app.providers,
//     app.definitions and app.commands
//  8. Apply timezone and runtime settings
//  9. Build the container and emit app.container
//  10. Register and boot providers, emit app.providers
//  11. Emit app.extensions and load providers added by its listeners
//  12. Call Ready on every loaded provider
//  13. Emit app.ready
//
// rootPath falls back to APP_PATH and rootURL to APP_URL. Bootstrap fails
// with ErrAlreadyInitialized unless the application is Uninitialized. A
// failing step returns its error and leaves the application Bootstrapping.
func (a *Application) Bootstrap(ctx context.Context, rootPath, rootURL string) error {
	if a.state != StateUninitialized {
		return ErrAlreadyInitialized
	}
	a.state = StateBootstrapping
	started := time.Now()

	steps := []step{
		{"environment", func(context.Context) error { return a.loadEnvironment(rootPath, rootURL) }},
		{"stage", func(context.Context) error { return a.configureStage() }},
		{"errors", func(context.Context) error { return a.configureErrors() }},
		{"paths", func(context.Context) error { return a.configurePaths() }},
		{"aliases", func(context.Context) error { return a.configureAliases() }},
		{"config", a.configureConfig},
		{"resources", func(context.Context) error { return a.applyConfig() }},
		{"runtime", func(context.Context) error { return a.configureRuntime() }},
		{"container", func(context.Context) error { return a.buildContainer() }},
		{"providers", func(context.Context) error { return a.bootProviders() }},
		{"extensions", func(context.Context) error { return a.bootExtensions() }},
		{"ready", func(context.Context) error { return a.readyProviders() }},
		{"finish", func(context.Context) error { return a.dispatch(events.AppReady, nil) }},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := time.Now()
		err := s.run(ctx)
		a.metrics.ObserveStep(s.name, time.Since(t), err)
		if err != nil {
			logging.Error("Bootstrap", err, "Bootstrap step %s failed", s.name)
			return err
		}
		logging.Debug("Bootstrap", "Step %s done in %s", s.name, time.Since(t))
	}

	a.state = StateReady
	a.metrics.ObserveBootstrap(time.Since(started))
	logging.Info("Bootstrap", "Application ready (stage %s, %d providers) in %s",
		a.stage, a.providers.Len(), time.Since(started).Round(time.Millisecond))

	// Listeners of app.ready may have declared providers while the
	// application was not ready yet.
	if len(a.providers.Unloaded()) > 0 {
		return a.loadProviders()
	}
	return nil
}

func (a *Application) loadEnvironment(rootPath, rootURL string) error {
	envPath := rootPath
	if envPath == "" {
		envPath = env.Get("APP_PATH", "")
	}
	if envPath != "" {
		if _, err := env.LoadDotenv(envPath); err != nil {
			return err
		}
	}

	e, err := env.Load()
	if err != nil {
		return err
	}
	a.env = e

	if rootURL == "" {
		rootURL = e.URL
	}
	if rootURL != "" {
		a.setRootURL(rootURL)
	}

	if rootPath == "" {
		rootPath = e.Path
	}
	if rootPath == "" {
		return ErrMissingRootPath
	}
	return a.setRootPath(rootPath)
}

func (a *Application) configureStage() error {
	a.stage = a.env.Stage
	logging.Info("Bootstrap", "Stage is %s", a.stage)
	return a.dispatch(events.AppEnvironment, map[string]any{"stage": a.stage})
}

func (a *Application) configureErrors() error {
	a.errors.Configure(a.IsDebug(), a.opts.RequestKind)
	a.errors.Register()
	return nil
}

func (a *Application) configureAliases() error {
	a.builder.WithAliasResolver(a.resolveAlias)
	return nil
}

func (a *Application) configureConfig(ctx context.Context) error {
	if a.env.Config != "" && a.paths.GetString("config", "") == "" {
		path, err := realpath(a.env.Config)
		if err != nil {
			return err
		}
		a.paths.Set("config", path)
	}
	if path := a.paths.GetString("config", ""); path != "" {
		if err := a.RegisterConfig(ctx, path); err != nil {
			return err
		}
	}

	if err := a.LoadConfig(ctx, false); err != nil {
		return err
	}
	return a.dispatch(events.AppConfig, nil)
}

func (a *Application) buildContainer() error {
	if len(a.configDefs) > 0 {
		a.builder.AddDefinitions("config", a.configDefs)
	}
	a.builder.AddDefinitions("commands", a.commandDefinitions())
	a.builder.AddDefinitions("internal", a.internalDefinitions())

	if dir := a.paths.GetString("cache.container", ""); a.IsPerformanceMode() && isDir(dir) {
		a.builder.EnableCompilation(dir)
	}

	c, err := a.builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	a.container = c
	return a.dispatch(events.AppContainer, nil)
}

func (a *Application) bootProviders() error {
	if err := a.loadProviders(); err != nil {
		return err
	}
	return a.dispatch(events.AppProviders, nil)
}

func (a *Application) bootExtensions() error {
	if err := a.dispatch(events.AppExtensions, nil); err != nil {
		return err
	}
	return a.loadProviders()
}

// internalDefinitions are applied last and win over every other set.
func (a *Application) internalDefinitions() container.Definitions {
	return container.Definitions{
		"app":       container.Value(a),
		"container": container.Singleton(func(c *container.Container) (any, error) { return a.container, nil }),
		"config":    container.Value(a.config),
		"paths":     container.Value(a.paths),
		"urls":      container.Value(a.urls),
		"error":     container.Value(a.errors),
		"metrics":   container.Value(a.metrics),
		"console": container.Transient(func(c *container.Container) (any, error) {
			return a.Console(), nil
		}),
	}
}
