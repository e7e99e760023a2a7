package formatting

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"sigs.k8s.io/yaml"
)

// PrettyJSON formats any value as indented JSON for human-readable display.
// It falls back to fmt.Sprintf when v cannot be marshalled.
func PrettyJSON(v any) string {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Encode writes v to w as JSON or YAML.
func Encode(w io.Writer, format OutputFormat, v any) error {
	switch format {
	case FormatJSON:
		b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case FormatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("format %q is not a structured format", format)
	}
}

// Value renders a single value for display: scalars as text, everything
// else as indented JSON.
func Value(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool, int, int64, float64, uint64:
		return fmt.Sprintf("%v", t)
	default:
		return PrettyJSON(t)
	}
}
