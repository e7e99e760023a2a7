// Package watcher follows configuration sources on disk and reloads the
// application configuration when a manifest changes.
//
// Events from fsnotify are debounced per file, so an editor writing a file in
// several steps yields a single Change. Reload consumes the changes, drops the
// compiled cache.config file and loads the configuration from source again.
package watcher
