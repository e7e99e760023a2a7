package manifest

import (
	"github.com/bytedance/sonic"
)

// jsonAPI keeps integers as int64 and sorts keys so dumps are reproducible.
var jsonAPI = sonic.Config{
	SortMapKeys: true,
	UseInt64:    true,
}.Froze()

type jsonCodec struct{}

func (jsonCodec) Decode(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := jsonAPI.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (jsonCodec) Encode(data map[string]any) ([]byte, error) {
	return jsonAPI.MarshalIndent(data, "", "  ")
}
