package manifest

import (
	"github.com/pelletier/go-toml/v2"
)

type tomlCodec struct{}

func (tomlCodec) Decode(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlCodec) Encode(data map[string]any) ([]byte, error) {
	return toml.Marshal(data)
}
