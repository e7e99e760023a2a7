package manifest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// iniCodec maps sections to nested keys: "[mail.smtp]" becomes
// {"mail": {"smtp": {...}}}. Keys outside any section sit at the root.
// Values stay strings.
type iniCodec struct{}

func (iniCodec) Decode(data []byte) (map[string]any, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{SpaceBeforeInlineComment: true}, data)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any)
	for _, section := range cfg.Sections() {
		node := out
		if name := section.Name(); name != ini.DefaultSection {
			for _, seg := range strings.Split(name, ".") {
				child, ok := node[seg].(map[string]any)
				if !ok {
					child = make(map[string]any)
					node[seg] = child
				}
				node = child
			}
		}
		for _, key := range section.Keys() {
			node[key.Name()] = key.Value()
		}
	}
	return out, nil
}

func (iniCodec) Encode(data map[string]any) ([]byte, error) {
	cfg := ini.Empty()
	if err := writeINISection(cfg, "", data); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeINISection(cfg *ini.File, name string, data map[string]any) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	section := cfg.Section(name)
	var nested []string
	for _, k := range keys {
		if _, ok := data[k].(map[string]any); ok {
			nested = append(nested, k)
			continue
		}
		if _, err := section.NewKey(k, iniValue(data[k])); err != nil {
			return err
		}
	}

	for _, k := range nested {
		child := k
		if name != "" {
			child = name + "." + k
		}
		if err := writeINISection(cfg, child, data[k].(map[string]any)); err != nil {
			return err
		}
	}
	return nil
}

func iniValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}
