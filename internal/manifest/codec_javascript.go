package manifest

import (
	"fmt"
	"os"

	"github.com/dop251/goja"
)

// jsCodec is the native code form. A manifest either assigns
// module.exports or evaluates to an object literal:
//
//	module.exports = { name: env("APP_NAME", "soma"), debug: false };
type jsCodec struct{}

func (jsCodec) Decode(data []byte) (map[string]any, error) {
	vm := goja.New()

	module := vm.NewObject()
	if err := module.Set("exports", vm.NewObject()); err != nil {
		return nil, err
	}
	if err := vm.Set("module", module); err != nil {
		return nil, err
	}
	if err := vm.Set("env", func(name string, def any) any {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return def
	}); err != nil {
		return nil, err
	}

	completion, err := vm.RunString(string(data))
	if err != nil {
		return nil, err
	}

	if exported, ok := exportObject(module.Get("exports")); ok && len(exported) > 0 {
		return exported, nil
	}
	if exported, ok := exportObject(completion); ok {
		return exported, nil
	}
	if completion == nil || goja.IsUndefined(completion) || goja.IsNull(completion) {
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("script must export an object, got %s", completion.ExportType())
}

func exportObject(v goja.Value) (map[string]any, bool) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, false
	}
	m, ok := v.Export().(map[string]any)
	return m, ok
}

func (jsCodec) Encode(data map[string]any) ([]byte, error) {
	body, err := jsonAPI.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+20)
	out = append(out, "module.exports = "...)
	out = append(out, body...)
	out = append(out, ";\n"...)
	return out, nil
}
