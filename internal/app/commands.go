package app

import (
	"fmt"
	"path"
	"strings"

	"soma/internal/container"
	"soma/internal/provider"

	"github.com/spf13/cobra"
)

// RegisterCommand adds console commands. Items are provider.Command values
// or identities looked up in the catalog, or lists of either. Commands added
// after the container was built are bound to it immediately.
func (a *Application) RegisterCommand(items ...any) error {
	var cmds []provider.Command
	for _, item := range items {
		switch v := item.(type) {
		case provider.Command:
			cmds = append(cmds, v)
		case []provider.Command:
			cmds = append(cmds, v...)
		case string:
			cmd, ok := a.catalog.LookupCommand(v)
			if !ok {
				return &provider.UnknownCommandError{ID: v}
			}
			cmds = append(cmds, cmd)
		case []string:
			for _, id := range v {
				if err := a.RegisterCommand(id); err != nil {
					return err
				}
			}
		case []any:
			if err := a.RegisterCommand(v...); err != nil {
				return err
			}
		default:
			return fmt.Errorf("cannot register %T as a command", item)
		}
	}
	return a.addCommands(cmds...)
}

func (a *Application) addCommands(cmds ...provider.Command) error {
	for _, cmd := range cmds {
		if cmd.ID == "" || cmd.New == nil {
			return fmt.Errorf("command %q has no constructor", cmd.ID)
		}
		if a.hasCommand(cmd.ID) {
			continue
		}
		a.commands = append(a.commands, cmd)
		if a.container != nil && !a.container.Has(cmd.ID) {
			a.container.Set(cmd.ID, a.commandDefinition(cmd))
		}
	}
	return nil
}

func (a *Application) hasCommand(id string) bool {
	for _, cmd := range a.commands {
		if cmd.ID == id {
			return true
		}
	}
	return false
}

// Commands returns the registered commands in registration order.
func (a *Application) Commands() []provider.Command {
	return append([]provider.Command(nil), a.commands...)
}

func (a *Application) commandDefinition(cmd provider.Command) container.Definition {
	return container.Transient(func(*container.Container) (any, error) {
		return cmd.New(a), nil
	})
}

func (a *Application) commandDefinitions() container.Definitions {
	defs := make(container.Definitions, len(a.commands))
	for _, cmd := range a.commands {
		defs[cmd.ID] = a.commandDefinition(cmd)
	}
	return defs
}

// Console builds a command tree named after app.name holding every
// registered command.
func (a *Application) Console() *cobra.Command {
	root := &cobra.Command{
		Use:           a.config.GetString("app.name", "soma"),
		Version:       a.config.GetString("app.version", "dev"),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, cmd := range a.commands {
		root.AddCommand(cmd.New(a))
	}
	return root
}

// RegisterAlias maps name to the container id target.
func (a *Application) RegisterAlias(name, target string) {
	a.aliases[name] = target
}

// RegisterAliases merges a set of aliases.
func (a *Application) RegisterAliases(aliases map[string]string) {
	for name, target := range aliases {
		a.aliases[name] = target
	}
}

// Aliases returns a copy of the alias map.
func (a *Application) Aliases() map[string]string {
	out := make(map[string]string, len(a.aliases))
	for k, v := range a.aliases {
		out[k] = v
	}
	return out
}

// resolveAlias is consulted by the container for ids it does not know. The
// full name is tried first, then its last segment.
func (a *Application) resolveAlias(id string) (string, bool) {
	if target, ok := a.aliases[id]; ok {
		return target, true
	}
	base := path.Base(strings.NewReplacer(`\`, "/", ".", "/").Replace(id))
	if base != id {
		if target, ok := a.aliases[base]; ok {
			return target, true
		}
	}
	return "", false
}
