package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"soma/internal/container"
	"soma/internal/manifest"
	"soma/pkg/logging"
	"soma/pkg/store"
)

// RegisterConfig adds configuration sources, files or directories. Once the
// application is ready the whole configuration is reloaded from source.
func (a *Application) RegisterConfig(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		if path != "" && !slices.Contains(a.configs, path) {
			a.configs = append(a.configs, path)
		}
	}
	if a.state == StateReady {
		return a.LoadConfig(ctx, true)
	}
	return nil
}

// LoadConfig fills the configuration store from the registered sources.
//
// In performance mode the merged configuration is read from the compiled
// cache.config file unless force is set. Otherwise each source is loaded,
// directories one manifest per file keyed by its relative path, and the merged
// result is written back to cache.config when its directory exists.
func (a *Application) LoadConfig(ctx context.Context, force bool) error {
	cachePath := a.paths.GetString("cache.config", "")

	if !force && a.IsPerformanceMode() && cachePath != "" && exists(cachePath) {
		data, err := manifest.ParseFile(cachePath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to read compiled configuration %s", cachePath)
			return fmt.Errorf("failed to read compiled configuration: %w", err)
		}
		a.config.Replace(data)
		a.metrics.ManifestLoaded(true)
		logging.Debug("Bootstrap", "Loaded configuration from %s", cachePath)
		return nil
	}

	manifestCache := a.paths.GetString("cache.manifests", "")
	opts := manifest.Options{
		Cache:      a.IsPerformanceMode() && manifestCache != "" && isDir(manifestCache),
		CheckMtime: true,
		CacheDir:   manifestCache,
		Debug:      a.IsDebug(),
	}

	for _, source := range a.configs {
		path, err := realpath(source)
		if err != nil {
			return err
		}
		manifests, err := manifest.LoadDir(ctx, path, opts)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from %s", path)
			return err
		}
		for _, m := range manifests {
			a.config.Set(m.Key(), m.All())
			a.metrics.ManifestLoaded(m.FromCache())
		}
		logging.Debug("Bootstrap", "Loaded %d manifests from %s", len(manifests), path)
	}

	if a.IsPerformanceMode() && cachePath != "" && isDir(filepath.Dir(cachePath)) {
		if err := manifest.DumpFile(cachePath, a.config.All()); err != nil {
			logging.Error("Bootstrap", err, "Failed to write compiled configuration %s", cachePath)
			return err
		}
	}
	return nil
}

// applyConfig merges the app.* keys into the application state.
func (a *Application) applyConfig() error {
	if paths := a.config.GetStringMap("app.paths"); len(paths) > 0 {
		a.paths.PutAll(store.New(paths).Flatten())
	}
	if urls := a.config.GetStringMap("app.urls"); len(urls) > 0 {
		a.urls.PutAll(store.New(urls).Flatten())
	}
	if aliases := a.config.GetStringMapString("app.aliases"); len(aliases) > 0 {
		a.RegisterAliases(aliases)
	}
	if ids := a.config.GetStringSlice("app.providers"); len(ids) > 0 {
		items := make([]any, len(ids))
		for i, id := range ids {
			items[i] = id
		}
		if err := a.RegisterProvider(items...); err != nil {
			return err
		}
	}
	if defs := a.config.GetStringMap("app.definitions"); len(defs) > 0 {
		a.configDefs = configDefinitions(defs)
	}
	if ids := a.config.GetStringSlice("app.commands"); len(ids) > 0 {
		items := make([]any, len(ids))
		for i, id := range ids {
			items[i] = id
		}
		if err := a.RegisterCommand(items...); err != nil {
			return err
		}
	}
	return nil
}

// configDefinitions turns app.definitions into container values. A string
// starting with "@" refers to another container id.
func configDefinitions(raw map[string]any) container.Definitions {
	defs := make(container.Definitions, len(raw))
	for id, v := range raw {
		if s, ok := v.(string); ok && strings.HasPrefix(s, "@") && len(s) > 1 {
			defs[id] = container.Ref(s[1:])
			continue
		}
		defs[id] = container.Value(v)
	}
	return defs
}

// configureRuntime applies the timezone, the exception switch and the date format.
func (a *Application) configureRuntime() error {
	tz := a.config.GetString("app.timezone", a.env.Timezone)
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		a.location = loc
	}

	if !a.config.GetBool("app.catch-exceptions", true) {
		a.errors.Unregister()
	}
	a.dateFormat = a.config.GetString("app.date-format", "")
	return nil
}
