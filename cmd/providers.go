package cmd

import (
	"strconv"
	"strings"

	"soma/internal/cli"
	"soma/internal/formatting"

	"github.com/spf13/cobra"
)

func (s *session) newProvidersCmd() *cobra.Command {
	flags := cli.OutputFlags{}
	cmd := &cobra.Command{
		Use:     "providers",
		Aliases: []string{"app:providers"},
		Short:   "List registered providers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.Options()
			if err != nil {
				return err
			}

			infos := s.app.Providers()
			if opts.Format.IsStructured() {
				return formatting.Encode(cmd.OutOrStdout(), opts.Format, infos)
			}

			rows := make([][]string, 0, len(infos))
			for _, p := range infos {
				rows = append(rows, []string{
					p.ID,
					p.Type,
					strconv.FormatBool(p.Loaded),
					strconv.FormatBool(p.Tracked),
					strings.Join(p.Capabilities, ","),
				})
			}
			formatting.Rows(cmd.OutOrStdout(), opts, []string{"ID", "Type", "Loaded", "Tracked", "Capabilities"}, rows)
			return nil
		},
	}
	cli.RegisterOutputFlags(cmd, &flags)
	return cmd
}
