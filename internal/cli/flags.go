package cli

import (
	"soma/internal/formatting"

	"github.com/spf13/cobra"
)

// OutputFlags holds the flag values of commands that print structured data.
type OutputFlags struct {
	// OutputFormat specifies the desired output format (table, wide, json, yaml)
	OutputFormat string
	// NoHeaders suppresses the header row in table output
	NoHeaders bool
	// Quiet suppresses progress indicators and non-essential output
	Quiet bool
}

// RegisterOutputFlags registers --output/-o, --no-headers and --quiet/-q on cmd.
func RegisterOutputFlags(cmd *cobra.Command, flags *OutputFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table, wide, json, yaml)")
	cmd.Flags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
}

// Options validates the flags and turns them into formatter options.
func (f *OutputFlags) Options() (formatting.Options, error) {
	format, err := formatting.ParseFormat(f.OutputFormat)
	if err != nil {
		return formatting.Options{}, err
	}
	return formatting.Options{Format: format, NoHeaders: f.NoHeaders}, nil
}
