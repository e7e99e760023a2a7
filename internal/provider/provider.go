package provider

import (
	"fmt"
	"strings"

	"soma/internal/container"
	"soma/internal/events"
	"soma/pkg/store"

	"github.com/spf13/cobra"
)

// Provider is any value that extends the application. What it can do is
// given by the capability interfaces below that it satisfies.
type Provider any

// Named providers choose their own identity.
type Named interface {
	Name() string
}

// Installer runs once per installation, recorded in the installed state.
type Installer interface {
	Install(c *container.Container) error
}

// Refresher runs on every refresh while installed.
type Refresher interface {
	Refresh(c *container.Container) error
}

// Uninstaller reverses Install.
type Uninstaller interface {
	Uninstall(c *container.Container) error
}

// Registerer binds services into the container.
type Registerer interface {
	Register(c *container.Container) error
}

// Booter runs after Register, once the container is complete.
type Booter interface {
	Boot(c *container.Container) error
}

// Readier runs when the whole application is ready.
type Readier interface {
	Ready(c *container.Container) error
}

// Aggregate declares further providers, as catalog identities or instances.
type Aggregate interface {
	Providers() []any
}

// CommandSource contributes console commands.
type CommandSource interface {
	Commands() []Command
}

// DefinitionSource contributes container definitions.
type DefinitionSource interface {
	Factories() container.Definitions
}

// ExtensionSource contributes container extensions.
type ExtensionSource interface {
	Extensions() container.Extensions
}

// Host is what a provider sees of the application when it is constructed.
type Host interface {
	Config() *store.Store
	Paths() *store.Store
	URLs() *store.Store
	Events() *events.Dispatcher
	Stage() string
	IsDebug() bool
}

// Constructor builds a provider for the given host.
type Constructor func(h Host) (Provider, error)

// Command is a console command contributed by a provider or by config.
type Command struct {
	// ID is the identity used in config and for start/finish events.
	ID string
	// New builds the cobra command bound to the host.
	New func(h Host) *cobra.Command
}

// Identity returns the key a provider is registered under: its Name when it
// is Named, otherwise fallback, otherwise its Go type.
func Identity(p Provider, fallback string) string {
	if n, ok := p.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	if fallback != "" {
		return fallback
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", p), "*")
}

// Tracked reports whether p takes part in install, refresh and uninstall.
func Tracked(p Provider) bool {
	switch p.(type) {
	case Installer, Refresher, Uninstaller:
		return true
	}
	return false
}

// Capabilities lists the capability names p implements, for display.
func Capabilities(p Provider) []string {
	var caps []string
	if _, ok := p.(Installer); ok {
		caps = append(caps, "install")
	}
	if _, ok := p.(Refresher); ok {
		caps = append(caps, "refresh")
	}
	if _, ok := p.(Uninstaller); ok {
		caps = append(caps, "uninstall")
	}
	if _, ok := p.(Registerer); ok {
		caps = append(caps, "register")
	}
	if _, ok := p.(Booter); ok {
		caps = append(caps, "boot")
	}
	if _, ok := p.(Readier); ok {
		caps = append(caps, "ready")
	}
	if _, ok := p.(Aggregate); ok {
		caps = append(caps, "providers")
	}
	if _, ok := p.(CommandSource); ok {
		caps = append(caps, "commands")
	}
	if _, ok := p.(DefinitionSource); ok {
		caps = append(caps, "factories")
	}
	if _, ok := p.(ExtensionSource); ok {
		caps = append(caps, "extensions")
	}
	return caps
}
