package manifest

import (
	"path/filepath"
	"sort"
	"strings"
)

// Codec converts between the bytes of one format and a nested mapping.
type Codec interface {
	Decode(data []byte) (map[string]any, error)
	Encode(data map[string]any) ([]byte, error)
}

// DefaultFormat is used for sources without an extension.
const DefaultFormat = "js"

var codecs = map[string]Codec{
	"js":   jsCodec{},
	"json": jsonCodec{},
	"yaml": yamlCodec{},
	"ini":  iniCodec{},
	"toml": tomlCodec{},
	"hcl":  hclCodec{},
}

// Formats returns every supported format, including aliases.
func Formats() []string {
	formats := make([]string, 0, len(codecs)+1)
	for f := range codecs {
		formats = append(formats, f)
	}
	formats = append(formats, "yml")
	sort.Strings(formats)
	return formats
}

// FormatOf derives the format from a path's extension.
func FormatOf(path string) string {
	return normalizeFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

func normalizeFormat(format string) string {
	format = strings.ToLower(format)
	if format == "yml" {
		return "yaml"
	}
	return format
}

func codecFor(format string) (Codec, error) {
	if format == "" {
		format = DefaultFormat
	}
	c, ok := codecs[normalizeFormat(format)]
	if !ok {
		return nil, &UnsupportedFormatError{Format: format}
	}
	return c, nil
}

// Parse decodes data of the given format into a normalized mapping.
func Parse(data []byte, format string) (map[string]any, error) {
	c, err := codecFor(format)
	if err != nil {
		return nil, err
	}
	out, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return normalizeMap(out), nil
}

// Dump encodes a mapping into the given format.
func Dump(data map[string]any, format string) ([]byte, error) {
	c, err := codecFor(format)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return c.Encode(data)
}
