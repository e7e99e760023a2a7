package cmd

import (
	"fmt"

	"soma/internal/cli"
	"soma/internal/formatting"

	"github.com/spf13/cobra"
)

func (s *session) newExportCmd() *cobra.Command {
	flags := cli.OutputFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the resolved application state",
		Long: `Prints the stage, configuration sources, paths, URLs, providers, aliases
and commands of the bootstrapped application as YAML or JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.Options()
			if err != nil {
				return err
			}
			if !opts.Format.IsStructured() {
				return fmt.Errorf("export supports json and yaml output, not %s", opts.Format)
			}
			return formatting.Encode(cmd.OutOrStdout(), opts.Format, s.app.Export())
		},
	}
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "yaml", "Output format (json, yaml)")
	return cmd
}
