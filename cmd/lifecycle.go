package cmd

import (
	"context"
	"fmt"
	"strings"

	"soma/internal/cli"
	"soma/internal/provider"

	"github.com/spf13/cobra"
)

// trackFunc runs one install-track operation on the application.
type trackFunc func(ctx context.Context, only string, observe provider.Observer) (*provider.BatchResult, error)

type trackCommand struct {
	op      provider.Op
	short   string
	long    string
	done    string
	verb    string
	noop    string
	runFunc func(s *session) trackFunc
}

var trackCommands = []trackCommand{
	{
		op:    provider.OpInstall,
		short: "Run the install hook of providers not installed yet",
		long: `Prepares the storage, cache and public directories, then runs the install
hook of every registered provider that is not recorded as installed yet.
Each successful install is recorded in the installation state right away.

With a provider identity only that provider is installed; a provider that is
not registered is constructed from the built-in catalog.`,
		done: "Installation successful!",
		verb: "Installing",
		noop: "Every provider is already installed",
		runFunc: func(s *session) trackFunc {
			return s.app.InstallProviders
		},
	},
	{
		op:    provider.OpRefresh,
		short: "Reload configuration and run the refresh hook of installed providers",
		long: `Prepares the runtime directories, reloads the configuration from its sources
and runs the refresh hook of every installed provider.`,
		done: "Refresh successful!",
		verb: "Refreshing",
		noop: "No installed provider to refresh",
		runFunc: func(s *session) trackFunc {
			return s.app.RefreshProviders
		},
	},
	{
		op:    provider.OpUninstall,
		short: "Run the uninstall hook of installed providers",
		long: `Runs the uninstall hook of every installed provider and clears its
installation flag. Each successful uninstall is recorded right away.`,
		done: "Uninstallation successful!",
		verb: "Uninstalling",
		noop: "No installed provider to uninstall",
		runFunc: func(s *session) trackFunc {
			return s.app.UninstallProviders
		},
	},
}

func (s *session) newInstallCmd() *cobra.Command   { return s.newTrackCmd(trackCommands[0]) }
func (s *session) newRefreshCmd() *cobra.Command   { return s.newTrackCmd(trackCommands[1]) }
func (s *session) newUninstallCmd() *cobra.Command { return s.newTrackCmd(trackCommands[2]) }

func (s *session) newTrackCmd(tc trackCommand) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:     string(tc.op) + " [provider]",
		Aliases: []string{"app:" + string(tc.op)},
		Short:   tc.short,
		Long:    tc.long,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			only := ""
			if len(args) == 1 {
				only = strings.TrimSpace(args[0])
			}
			return s.runTrack(cmd, tc, only, quiet)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	return cmd
}

func (s *session) runTrack(cmd *cobra.Command, tc trackCommand, only string, quiet bool) error {
	out := cmd.OutOrStdout()
	if only != "" {
		fmt.Fprintf(out, "Executing %s on %s...\n", tc.op, only)
	} else {
		fmt.Fprintf(out, "Executing %s on registered providers...\n", tc.op)
	}

	progress := cli.NewProgress(cmd.ErrOrStderr(), quiet)
	observe := func(_ provider.Op, id string) {
		progress.Start(fmt.Sprintf("%s %s", tc.verb, id))
	}

	result, err := tc.runFunc(s)(cmd.Context(), only, observe)
	progress.Stop()

	if result != nil {
		for _, id := range result.Ran {
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s %s", tc.verb, id)))
		}
	}
	if err != nil {
		if provider.IsHookError(err) {
			fmt.Fprintln(out, cli.FormatError(err))
		}
		return err
	}

	if len(result.Ran) == 0 && len(result.Skipped) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No registered provider found"))
		return nil
	}
	if len(result.Ran) == 0 {
		fmt.Fprintln(out, cli.FormatWarning(tc.noop))
		return nil
	}
	fmt.Fprintf(out, "%s (%s)\n", tc.done, cli.Plural(len(result.Ran), "provider"))
	return nil
}
