package formatting

import (
	"fmt"
	"strings"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Plain table output
	FormatWide  OutputFormat = "wide"  // Boxed table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Options configures the formatter behavior
type Options struct {
	Format    OutputFormat
	NoHeaders bool // Suppress the header row of tables
}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatWide, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected table, wide, json or yaml)", s)
	}
}

// IsStructured reports whether f is a machine readable format.
func (f OutputFormat) IsStructured() bool {
	return f == FormatJSON || f == FormatYAML
}
