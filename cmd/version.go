package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the Cobra command for displaying the application version.
func (s *session) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number of soma",
		Long:        `All software has versions. This is soma's.`,
		Annotations: map[string]string{annotationBootstrap: "false"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "soma version %s\n", buildVersion)
		},
	}
}
