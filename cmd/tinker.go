package cmd

import (
	"soma/internal/tinker"

	"github.com/spf13/cobra"
)

func (s *session) newTinkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tinker",
		Aliases: []string{"app:tinker"},
		Short:   "Inspect the bootstrapped application interactively",
		Long: `Opens an interactive shell on the bootstrapped application. Use 'config',
'paths' and 'urls' to read the registries, 'providers' to list providers,
'get <id>' to resolve a container entry and 'exit' to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tinker.New(s.app, cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}
