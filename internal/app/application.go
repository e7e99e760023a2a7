package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"soma/internal/container"
	"soma/internal/env"
	"soma/internal/events"
	"soma/internal/metrics"
	"soma/internal/provider"
	"soma/pkg/store"

	"github.com/google/uuid"
)

// State is the position of an Application in its bootstrap sequence.
type State int

const (
	StateUninitialized State = iota
	StateBootstrapping
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBootstrapping:
		return "bootstrapping"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// RequestKind tells the error handler how reports reach the user.
type RequestKind string

const (
	RequestCLI  RequestKind = "cli"
	RequestHTTP RequestKind = "http"
)

// Options configures a new Application.
type Options struct {
	// Catalog lists the providers and commands configuration may name.
	Catalog *provider.Catalog
	// Metrics records bootstrap and provider metrics. Optional.
	Metrics *metrics.Metrics
	// Output receives error reports. Defaults to os.Stderr.
	Output io.Writer
	// RequestKind defaults to RequestCLI.
	RequestKind RequestKind
}

// Application owns the configuration, the path and URL registries, the
// provider registry and the container of one process.
type Application struct {
	id    string
	opts  Options
	state State

	env      *env.Environment
	stage    string
	location *time.Location

	config  *store.Store
	paths   *store.Store
	urls    *store.Store
	events  *events.Dispatcher
	errors  *ErrorHandler
	metrics *metrics.Metrics

	configs    []string
	catalog    *provider.Catalog
	providers  *provider.Registry
	readied    map[string]bool
	loading    bool
	aliases    map[string]string
	commands   []provider.Command
	configDefs container.Definitions
	dateFormat string

	builder   *container.Builder
	container *container.Container
}

// New creates an Application in the Uninitialized state.
func New(opts Options) *Application {
	if opts.Catalog == nil {
		opts.Catalog = provider.NewCatalog()
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.RequestKind == "" {
		opts.RequestKind = RequestCLI
	}

	return &Application{
		id:        uuid.New().String(),
		opts:      opts,
		config:    store.New(nil),
		paths:     store.NewFlat(nil),
		urls:      store.NewFlat(nil),
		events:    events.NewDispatcher(),
		errors:    NewErrorHandler(opts.Output, false, opts.RequestKind),
		metrics:   opts.Metrics,
		catalog:   opts.Catalog,
		providers: provider.NewRegistry(),
		readied:   make(map[string]bool),
		aliases:   make(map[string]string),
		builder:   container.NewBuilder(),
		location:  time.Local,
	}
}

// ID identifies this run of the application.
func (a *Application) ID() string { return a.id }

// State returns the current bootstrap state.
func (a *Application) State() State { return a.state }

// Config returns the configuration store.
func (a *Application) Config() *store.Store { return a.config }

// Paths returns the path registry.
func (a *Application) Paths() *store.Store { return a.paths }

// URLs returns the URL registry.
func (a *Application) URLs() *store.Store { return a.urls }

// Events returns the lifecycle event dispatcher.
func (a *Application) Events() *events.Dispatcher { return a.events }

// Metrics returns the metrics the application records into, possibly nil.
func (a *Application) Metrics() *metrics.Metrics { return a.metrics }

// ErrorHandler returns the panic and error reporter.
func (a *Application) ErrorHandler() *ErrorHandler { return a.errors }

// Catalog returns the provider and command catalog.
func (a *Application) Catalog() *provider.Catalog { return a.catalog }

// Container returns the built container, or nil before bootstrap built it.
func (a *Application) Container() *container.Container { return a.container }

// Environment returns the APP_* block read during bootstrap.
func (a *Application) Environment() *env.Environment { return a.env }

// Stage returns the stage label, e.g. "production".
func (a *Application) Stage() string { return a.stage }

// IsStage compares stage case-insensitively.
func (a *Application) IsStage(stage string) bool {
	return strings.EqualFold(a.stage, stage)
}

// IsDebug reports whether APP_DEBUG is on.
func (a *Application) IsDebug() bool {
	return a.env != nil && a.env.Debug
}

// IsPerformanceMode reports whether compiled caches are used (APP_OPTIMIZE).
func (a *Application) IsPerformanceMode() bool {
	return a.env == nil || a.env.Optimize
}

// Location returns the configured timezone.
func (a *Application) Location() *time.Location { return a.location }

// DateFormat returns app.date-format, or a default layout when unset.
func (a *Application) DateFormat() string {
	if a.dateFormat != "" {
		return a.dateFormat
	}
	return time.DateTime
}

// Configs returns the registered configuration sources in order.
func (a *Application) Configs() []string {
	return append([]string(nil), a.configs...)
}

// Get resolves id from the container.
func (a *Application) Get(id string) (any, error) {
	if a.container == nil {
		return nil, ErrContainerNotReady
	}
	return a.container.Get(id)
}

// Has reports whether the container can resolve id.
func (a *Application) Has(id string) (bool, error) {
	if a.container == nil {
		return false, ErrContainerNotReady
	}
	return a.container.Has(id), nil
}

// Make builds a fresh instance of id, bypassing singleton caching.
func (a *Application) Make(id string) (any, error) {
	if a.container == nil {
		return nil, ErrContainerNotReady
	}
	return a.container.Make(id)
}

// Dispatch fires name on the application dispatcher.
func (a *Application) Dispatch(name string, payload map[string]any) error {
	return a.dispatch(name, payload)
}

func (a *Application) dispatch(name string, payload map[string]any) error {
	a.metrics.EventDispatched(name)
	return a.events.Dispatch(name, payload)
}

// ProviderInfo describes a registered provider.
type ProviderInfo struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Loaded       bool     `json:"loaded"`
	Tracked      bool     `json:"tracked"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Providers lists the registered providers in registration order.
func (a *Application) Providers() []ProviderInfo {
	entries := a.providers.Entries()
	out := make([]ProviderInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, ProviderInfo{
			ID:           e.ID,
			Type:         strings.TrimPrefix(fmt.Sprintf("%T", e.Provider), "*"),
			Loaded:       e.Loaded,
			Tracked:      provider.Tracked(e.Provider),
			Capabilities: provider.Capabilities(e.Provider),
		})
	}
	return out
}

// Summary is the exported view of the application state.
type Summary struct {
	ID        string            `json:"id"`
	State     string            `json:"state"`
	Stage     string            `json:"stage"`
	Configs   []string          `json:"configs"`
	Paths     map[string]any    `json:"paths"`
	URLs      map[string]any    `json:"urls"`
	Providers []ProviderInfo    `json:"providers"`
	Aliases   map[string]string `json:"aliases"`
	Commands  []string          `json:"commands"`
}

// Export returns a snapshot of stage, config sources, paths, URLs, providers,
// aliases and commands.
func (a *Application) Export() *Summary {
	aliases := make(map[string]string, len(a.aliases))
	for k, v := range a.aliases {
		aliases[k] = v
	}
	commands := make([]string, 0, len(a.commands))
	for _, cmd := range a.commands {
		commands = append(commands, cmd.ID)
	}
	sort.Strings(commands)

	return &Summary{
		ID:        a.id,
		State:     a.state.String(),
		Stage:     a.stage,
		Configs:   a.Configs(),
		Paths:     a.paths.Flatten(),
		URLs:      a.urls.Flatten(),
		Providers: a.Providers(),
		Aliases:   aliases,
		Commands:  commands,
	}
}
