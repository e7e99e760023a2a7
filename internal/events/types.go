package events

import (
	"time"
)

// Lifecycle signals emitted by the application while bootstrapping.
const (
	// AppEnvironment fires once the stage is known.
	AppEnvironment = "app.environment"

	// AppConfig fires after configuration has been loaded.
	AppConfig = "app.config"

	// AppContainer fires after the container has been built.
	AppContainer = "app.container"

	// AppProviders fires after every declared provider was registered and booted.
	AppProviders = "app.providers"

	// AppExtensions is the last point to register providers before readiness.
	AppExtensions = "app.extensions"

	// AppReady fires once the application reached its ready state.
	AppReady = "app.ready"
)

// Cache and console signals.
const (
	AppCacheClear = "app.cache.clear"
	ConsoleStart  = "console.start"
)

// ProviderRegistered is emitted when a provider is accepted into the registry.
func ProviderRegistered(id string) string { return id + ".registered" }

// ProviderLoaded is emitted after a provider's boot hook ran.
func ProviderLoaded(id string) string { return id + ".loaded" }

// CacheClear is emitted after the cache directory registered as cache.<key> was emptied.
func CacheClear(key string) string { return "cache." + key + ".clear" }

// CommandStart is emitted before a console command runs.
func CommandStart(name string) string { return name + ".start" }

// CommandFinish is emitted after a console command returned.
func CommandFinish(name string) string { return name + ".finish" }

// Event is a named signal with an optional payload.
type Event struct {
	Name    string
	Payload map[string]any
	Time    time.Time
}

// Listener handles an event. A returned error stops the dispatch.
type Listener func(Event) error
