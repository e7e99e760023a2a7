package tinker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"soma/internal/app"
	"soma/pkg/logging"
	"soma/pkg/store"

	"github.com/chzyer/readline"
)

// errExit ends the shell.
var errExit = errors.New("exit")

// Host is what the shell inspects.
type Host interface {
	Config() *store.Store
	Paths() *store.Store
	URLs() *store.Store
	Stage() string
	Providers() []app.ProviderInfo
	Get(id string) (any, error)
}

type command struct {
	usage       string
	description string
	run         func(args []string) error
}

// Shell is an interactive read-eval-print loop over a Host.
type Shell struct {
	host     Host
	out      io.Writer
	commands map[string]*command
	aliases  map[string]string
	rl       *readline.Instance
}

// New creates a shell writing to out.
func New(host Host, out io.Writer) *Shell {
	s := &Shell{
		host:    host,
		out:     out,
		aliases: map[string]string{"?": "help", "quit": "exit"},
	}
	s.registerCommands()
	return s
}

func (s *Shell) registerCommands() {
	s.commands = map[string]*command{
		"config": {
			usage:       "config [key]",
			description: "Show the configuration, or the value at a dotted key",
			run:         s.storeCommand("config", s.host.Config),
		},
		"paths": {
			usage:       "paths [key]",
			description: "Show the registered paths",
			run:         s.storeCommand("path", s.host.Paths),
		},
		"urls": {
			usage:       "urls [key]",
			description: "Show the registered URLs",
			run:         s.storeCommand("url", s.host.URLs),
		},
		"providers": {
			usage:       "providers",
			description: "List registered providers",
			run:         s.providers,
		},
		"get": {
			usage:       "get <id>",
			description: "Resolve an entry from the container",
			run:         s.get,
		},
		"stage": {
			usage:       "stage",
			description: "Show the current stage",
			run: func([]string) error {
				fmt.Fprintln(s.out, s.host.Stage())
				return nil
			},
		},
		"help": {
			usage:       "help",
			description: "Show this help",
			run:         s.help,
		},
		"exit": {
			usage:       "exit",
			description: "Leave the shell",
			run:         func([]string) error { return errExit },
		},
	}
}

// Execute runs one line of input. It returns nil for "exit"; callers use
// Run to loop.
func (s *Shell) Execute(input string) error {
	err := s.execute(input)
	if errors.Is(err, errExit) {
		return nil
	}
	return err
}

func (s *Shell) execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	name := strings.ToLower(parts[0])
	if alias, ok := s.aliases[name]; ok {
		name = alias
	}
	cmd, ok := s.commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}
	return cmd.run(parts[1:])
}

// Run reads commands until exit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "soma » ",
		HistoryFile:       filepath.Join(os.TempDir(), ".soma_tinker_history"),
		AutoComplete:      s.completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            s.out,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	s.rl = rl

	fmt.Fprintf(s.out, "Tinker started on stage %s. Type 'help' for available commands.\n", s.host.Stage())

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		if err := s.execute(strings.TrimSpace(line)); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			logging.Debug("Tinker", "Command failed: %v", err)
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *Shell) completer() *readline.PrefixCompleter {
	keys := func(st func() *store.Store) func(string) []string {
		return func(string) []string {
			flat := st().Flatten()
			out := make([]string, 0, len(flat))
			for k := range flat {
				out = append(out, k)
			}
			sort.Strings(out)
			return out
		}
	}

	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		switch name {
		case "config":
			items = append(items, readline.PcItem(name, readline.PcItemDynamic(keys(s.host.Config))))
		case "paths":
			items = append(items, readline.PcItem(name, readline.PcItemDynamic(keys(s.host.Paths))))
		case "urls":
			items = append(items, readline.PcItem(name, readline.PcItemDynamic(keys(s.host.URLs))))
		default:
			items = append(items, readline.PcItem(name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}
