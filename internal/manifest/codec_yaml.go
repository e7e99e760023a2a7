package manifest

import (
	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

func (yamlCodec) Decode(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (yamlCodec) Encode(data map[string]any) ([]byte, error) {
	return yaml.Marshal(data)
}
