package cmd

import (
	"fmt"

	"soma/internal/cli"

	"github.com/spf13/cobra"
)

func (s *session) newClearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clear-cache [key]",
		Aliases: []string{"app:clear-cache"},
		Short:   "Empty the application caches",
		Long: `Without a key every registered cache.* directory is emptied, together with
the files kept directly in the cache directory. With a key only the directory
registered as cache.<key> is emptied. A key without a registered directory
only triggers the cache.<key>.clear event for the providers listening on it:

  soma clear-cache manifests
  soma clear-cache container
  soma clear-cache sessions`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			if err := s.app.ClearCache(key); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}

			if key == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Application cache cleared"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Cache %s cleared", key)))
			}
			return nil
		},
	}
}
