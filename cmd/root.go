package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"soma/internal/app"
	"soma/internal/events"
	"soma/internal/metrics"
	"soma/internal/provider"
	eventsprovider "soma/internal/providers/events"
	metricsprovider "soma/internal/providers/metrics"
	"soma/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeBootstrap indicates the application could not be bootstrapped.
	ExitCodeBootstrap = 2
	// ExitCodeProviderHook indicates an install, refresh or uninstall hook failed.
	ExitCodeProviderHook = 3
)

// Annotations read by the root command hooks.
const (
	annotationBootstrap = "soma/bootstrap"
	annotationRequest   = "soma/request"
)

// buildVersion is injected by main.
var buildVersion = "dev"

// SetVersion sets the version reported by the CLI.
func SetVersion(v string) {
	buildVersion = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return buildVersion
}

// BootstrapError marks a failure to bring the application up.
type BootstrapError struct {
	Err error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("failed to bootstrap application: %v", e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	root     string
	url      string
	storage  string
	config   string
	debug    bool
	logLevel string
}

// session is one invocation of the CLI. It owns the application once a
// command needs it.
type session struct {
	flags   rootFlags
	catalog *provider.Catalog
	app     *app.Application
	out     io.Writer
	errOut  io.Writer
}

func newSession(catalog *provider.Catalog, out, errOut io.Writer) *session {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &session{catalog: catalog, out: out, errOut: errOut}
}

// DefaultCatalog lists the providers and commands built into the binary.
func DefaultCatalog() *provider.Catalog {
	c := provider.NewCatalog()
	eventsprovider.Register(c)
	metricsprovider.Register(c)
	return c
}

// newRootCmd builds the command tree for s.
func (s *session) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "soma",
		Short: "Bootstrap an application and manage its extension providers",
		Long: `soma loads the application configuration, assembles the service container
and drives the providers declared in app.providers through their lifecycle.

Run it from the application root or point it there with --root (env: APP_PATH).
Configuration is read from --config, APP_CONFIG or <root>/config.`,
		Version:           buildVersion,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: s.preRun,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if s.app == nil || skipsBootstrap(cmd) {
				return nil
			}
			return s.app.Dispatch(events.CommandFinish(cmd.Name()), map[string]any{"command": cmd.Name()})
		},
	}
	root.SetVersionTemplate(`{{printf "soma version %s\n" .Version}}`)
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&s.flags.root, "root", "", "Application root directory (env: APP_PATH, default: current directory)")
	pf.StringVar(&s.flags.url, "url", "", "Application root URL (env: APP_URL)")
	pf.StringVar(&s.flags.storage, "storage", "", "Storage directory (env: APP_STORAGE, default: <root>/storage)")
	pf.StringVar(&s.flags.config, "config", "", "Configuration file or directory (env: APP_CONFIG, default: <root>/config)")
	pf.BoolVar(&s.flags.debug, "debug", false, "Enable debug logging")
	pf.StringVar(&s.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		s.newVersionCmd(),
		s.newSelfUpdateCmd(),
		s.newInstallCmd(),
		s.newRefreshCmd(),
		s.newUninstallCmd(),
		s.newClearCacheCmd(),
		s.newServeCmd(),
		s.newTinkerCmd(),
		s.newExportCmd(),
		s.newProvidersCmd(),
	)
	return root
}

func (s *session) preRun(cmd *cobra.Command, args []string) error {
	if err := s.initLogging(); err != nil {
		return err
	}
	if skipsBootstrap(cmd) {
		return nil
	}

	if s.app == nil {
		kind := app.RequestCLI
		if cmd.Annotations[annotationRequest] == string(app.RequestHTTP) {
			kind = app.RequestHTTP
		}
		if err := s.bootstrap(cmd.Context(), kind); err != nil {
			return err
		}
	}

	if err := s.app.Dispatch(events.ConsoleStart, nil); err != nil {
		return err
	}
	return s.app.Dispatch(events.CommandStart(cmd.Name()), map[string]any{
		"command": cmd.Name(),
		"args":    args,
	})
}

func (s *session) initLogging() error {
	level := logging.LevelWarn
	if s.flags.logLevel != "" {
		l, err := logging.ParseLevel(s.flags.logLevel)
		if err != nil {
			return err
		}
		level = l
	}
	if s.flags.debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, s.errOut)
	return nil
}

// bootstrap creates the application and brings it to Ready.
func (s *session) bootstrap(ctx context.Context, kind app.RequestKind) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.flags.debug {
		os.Setenv("APP_DEBUG", "true")
	}

	root := s.flags.root
	if root == "" && os.Getenv("APP_PATH") == "" {
		wd, err := os.Getwd()
		if err != nil {
			return &BootstrapError{Err: err}
		}
		root = wd
	}
	base := root
	if base == "" {
		base = os.Getenv("APP_PATH")
	}

	a := app.New(app.Options{
		Catalog:     s.catalog,
		Metrics:     metrics.New(),
		Output:      s.errOut,
		RequestKind: kind,
	})

	storage := s.flags.storage
	if storage == "" {
		storage = filepath.Join(base, "storage")
	}
	a.RegisterPath("storage", storage)

	switch {
	case s.flags.config != "":
		a.RegisterPath("config", s.flags.config)
	case os.Getenv("APP_CONFIG") == "":
		if dir := filepath.Join(base, "config"); isDir(dir) {
			a.RegisterPath("config", dir)
		}
	}

	if err := a.Bootstrap(ctx, root, s.flags.url); err != nil {
		return &BootstrapError{Err: err}
	}
	if !app.SetCurrent(a) {
		logging.Debug("CLI", "Process-wide application already set, keeping the first one")
	}
	s.app = a
	return nil
}

// attachConsole adds the commands contributed by providers and config to
// root, skipping names that are already taken.
func (s *session) attachConsole(root *cobra.Command) {
	taken := make(map[string]bool)
	for _, c := range root.Commands() {
		taken[c.Name()] = true
		for _, alias := range c.Aliases {
			taken[alias] = true
		}
	}
	for _, c := range s.app.Console().Commands() {
		if taken[c.Name()] {
			logging.Warn("CLI", "Command %s is already defined, ignoring the contributed one", c.Name())
			continue
		}
		root.AddCommand(c)
	}
}

// execute runs args against root. A command the static tree does not know
// may be contributed by a provider, so the application is bootstrapped first
// and its console merged in.
func (s *session) execute(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(args)
	root.SetOut(s.out)
	root.SetErr(s.errOut)

	if _, _, err := root.Find(args); err != nil {
		pf := root.PersistentFlags()
		pf.ParseErrorsWhitelist.UnknownFlags = true
		parseErr := pf.Parse(args)
		pf.ParseErrorsWhitelist.UnknownFlags = false
		if parseErr != nil {
			return parseErr
		}
		if err := s.initLogging(); err != nil {
			return err
		}
		if err := s.bootstrap(ctx, app.RequestCLI); err != nil {
			return err
		}
		s.attachConsole(root)
	}

	return root.ExecuteContext(ctx)
}

// Execute is the main entry point for the CLI application. It is called by
// main.main().
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newSession(nil, out, errOut)
	err := s.execute(ctx, s.newRootCmd(), args)
	if err == nil {
		return ExitCodeSuccess
	}

	if s.app != nil {
		s.app.ErrorHandler().Report(err)
	} else {
		fmt.Fprintf(errOut, "Error: %v\n", err)
	}
	return getExitCode(err)
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var bootErr *BootstrapError
	if errors.As(err, &bootErr) {
		return ExitCodeBootstrap
	}
	if provider.IsHookError(err) {
		return ExitCodeProviderHook
	}
	return ExitCodeError
}

func skipsBootstrap(cmd *cobra.Command) bool {
	if cmd.Annotations[annotationBootstrap] == "false" {
		return true
	}
	return cmd.Name() == "help" || !cmd.HasParent()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
