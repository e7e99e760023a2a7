package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"soma/internal/events"
	"soma/pkg/logging"
)

// Directories created by Install.
var runtimeDirectories = []string{
	"storage",
	"cache",
	"cache.app",
	"cache.manifests",
	"cache.container",
	"storage.public",
	"cache.public",
	"extensions.public",
}

// RegisterPath stores path under name in the path registry.
func (a *Application) RegisterPath(name, path string) {
	a.paths.Set(name, path)
}

// RegisterURL stores url under name in the URL registry.
func (a *Application) RegisterURL(name, url string) {
	a.urls.Set(name, url)
}

// RootPath returns the root path, joined with sub when given.
func (a *Application) RootPath(sub ...string) string {
	base := a.paths.GetString("root", "")
	if len(sub) == 0 {
		return base
	}
	return filepath.Join(append([]string{base}, sub...)...)
}

// RootURL returns the root URL, with sub appended when given.
func (a *Application) RootURL(sub ...string) string {
	base := a.urls.GetString("root", "")
	if len(sub) == 0 {
		return base
	}
	return base + "/" + strings.Join(sub, "/")
}

func (a *Application) setRootPath(path string) error {
	abs, err := realpath(path)
	if err != nil {
		return fmt.Errorf("failed to resolve root path %s: %w", path, err)
	}
	a.paths.Set("root", abs)
	return nil
}

func (a *Application) setRootURL(url string) {
	a.urls.Set("root", strings.TrimRight(url, "/"))
}

// configurePaths derives the storage, cache and public locations.
func (a *Application) configurePaths() error {
	storage := ""
	if a.env.Storage != "" {
		if real, err := realpath(a.env.Storage); err == nil && exists(real) {
			storage = real
		}
	}
	if storage == "" {
		storage = a.paths.GetString("storage", "")
	}
	if storage == "" {
		return ErrMissingStorageDirectory
	}

	root := a.RootPath()
	cache := filepath.Join(storage, "cache")
	set := map[string]string{
		"storage":           storage,
		"cache":             cache,
		"installation":      filepath.Join(storage, "app.json"),
		"cache.app":         filepath.Join(cache, "app"),
		"cache.manifests":   filepath.Join(cache, "app", "manifests"),
		"cache.config":      filepath.Join(cache, "app", "config.json"),
		"cache.container":   filepath.Join(cache, "app", "container"),
		"storage.public":    filepath.Join(storage, "public"),
		"storage.link":      filepath.Join(root, "storage"),
		"cache.public":      filepath.Join(storage, "public", "cache"),
		"extensions.public": filepath.Join(root, "extensions"),
	}
	for name, path := range set {
		a.paths.Set(name, path)
	}

	if rootURL := a.RootURL(); rootURL != "" {
		a.urls.Set("extensions.public", rootURL+"/extensions")
		a.urls.Set("storage.public", rootURL+"/storage")
		a.urls.Set("cache.public", rootURL+"/storage/cache")
	}

	logging.Debug("Bootstrap", "Storage directory is %s", storage)
	return nil
}

// Install creates the runtime directories and links the public storage
// directory into the root.
func (a *Application) Install() error {
	for _, name := range runtimeDirectories {
		dir := a.paths.GetString(name, "")
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.Error("Install", err, "Failed to create %s directory %s", name, dir)
			return fmt.Errorf("failed to create %s directory: %w", name, err)
		}
	}

	link := a.paths.GetString("storage.link", "")
	target := a.paths.GetString("storage.public", "")
	if link == "" || target == "" {
		return nil
	}
	if _, err := os.Lstat(link); err == nil {
		return nil
	}
	real, err := realpath(target)
	if err != nil {
		return err
	}
	if err := os.Symlink(real, link); err != nil {
		logging.Error("Install", err, "Failed to link %s to %s", link, real)
		return fmt.Errorf("failed to link public storage: %w", err)
	}
	logging.Info("Install", "Linked %s to %s", link, real)
	return nil
}

// ClearCache empties the cache registered as cache.<key> and emits
// cache.<key>.clear. Without a key every cache.* location is emptied,
// followed by the files directly inside the cache directory, and
// cache.app.clear is emitted. app.cache.clear is emitted in both cases.
func (a *Application) ClearCache(key string) error {
	if a.state == StateReady {
		if key == "" {
			if err := a.clearAllCaches(); err != nil {
				return err
			}
		} else {
			if path := a.paths.GetString("cache."+key, ""); path != "" {
				if err := clearPath(path); err != nil {
					return fmt.Errorf("failed to clear cache %s: %w", key, err)
				}
			}
			a.metrics.CacheCleared(key)
			logging.Info("Cache", "Cleared %s cache", key)
			if err := a.dispatch(events.CacheClear(key), map[string]any{"key": key}); err != nil {
				return err
			}
		}
	}
	return a.dispatch(events.AppCacheClear, map[string]any{"key": key})
}

func (a *Application) clearAllCaches() error {
	var names []string
	for name := range a.paths.All() {
		if strings.HasPrefix(name, "cache.") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := clearPath(a.paths.GetString(name, "")); err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}
	if err := clearFiles(a.paths.GetString("cache", "")); err != nil {
		return fmt.Errorf("failed to clear cache directory: %w", err)
	}

	a.metrics.CacheCleared("all")
	logging.Info("Cache", "Cleared %d cache locations", len(names))
	return a.dispatch(events.CacheClear("app"), nil)
}

// clearPath removes a file, or every file below a directory while keeping
// the directory tree. Symlinks are followed. A missing path is not an error.
func clearPath(path string) error {
	if path == "" {
		return nil
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return os.Remove(path)
	}
	return emptyDir(path)
}

func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			err = emptyDir(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// clearFiles removes the regular files directly inside dir.
func clearFiles(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// realpath makes path absolute and resolves symlinks when the path exists.
func realpath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
