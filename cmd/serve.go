package cmd

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"soma/internal/app"
	"soma/internal/server"
	"soma/internal/watcher"
	"soma/pkg/logging"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	host     string
	port     int
	watch    bool
	debounce time.Duration
}

func (s *session) newServeCmd() *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"app:serve"},
		Short:   "Serve the public directories and metrics of the application",
		Long: `Starts an HTTP server for the bootstrapped application. It serves:

  /storage/*     files below the public storage directory
  /extensions/*  files below the public extensions directory
  /metrics       Prometheus metrics of the application
  /healthz       a small JSON health document

With --watch the configuration sources are watched; a change drops the
compiled configuration and reloads it from source. When started by systemd
with Type=notify the server reports readiness once it accepts connections.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRequest: string(app.RequestHTTP)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "localhost", "Host to listen on")
	cmd.Flags().IntVar(&flags.port, "port", 8000, "Port to listen on")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Reload configuration when its sources change")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", 500*time.Millisecond, "Quiet period before a change triggers a reload")
	return cmd
}

func (s *session) runServe(cmd *cobra.Command, flags serveFlags) error {
	ctx := cmd.Context()
	a := s.app
	addr := net.JoinHostPort(flags.host, strconv.Itoa(flags.port))

	if err := a.Install(); err != nil {
		return fmt.Errorf("failed to prepare runtime directories: %w", err)
	}

	if flags.watch {
		w := watcher.New(absPaths(a.Configs()), flags.debounce)
		changes := make(chan watcher.Change, 16)
		if err := w.Start(ctx, changes); err != nil {
			return fmt.Errorf("failed to watch configuration: %w", err)
		}
		defer w.Stop()
		go watcher.Reload(ctx, a, changes, nil)
	}

	srv := server.New(a, addr)
	name := a.Config().GetString("app.name", "soma")

	return srv.Run(ctx, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s server started on http://%s/\n", name, addr)
		sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
		if err != nil {
			logging.Warn("Serve", "Failed to notify systemd: %v", err)
		} else if sent {
			logging.Info("Serve", "Notified systemd of readiness")
		}
	})
}

func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}
