package store

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// GetString returns the value at key rendered as a string.
func (s *Store) GetString(key, def string) string {
	v, ok := s.lookup(key)
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// GetBool returns the value at key interpreted as a boolean.
func (s *Store) GetBool(key string, def bool) bool {
	v, ok := s.lookup(key)
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off", "":
			return false
		}
		return def
	default:
		return !isEmpty(v)
	}
}

// GetStringSlice returns the value at key as a list of strings. A single
// string becomes a one-element list.
func (s *Store) GetStringSlice(key string) []string {
	v, ok := s.lookup(key)
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case string:
		return []string{t}
	}
	list := toList(v)
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// GetStringMap returns the mapping at key, or nil when the value is not a mapping.
func (s *Store) GetStringMap(key string) map[string]any {
	v, _ := s.lookup(key)
	m, _ := v.(map[string]any)
	return m
}

// GetStringMapString returns the mapping at key with every value rendered as a string.
func (s *Store) GetStringMapString(key string) map[string]string {
	v, _ := s.lookup(key)
	switch t := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, val := range t {
			out[k] = fmt.Sprint(val)
		}
		return out
	}
	return nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case bool:
		return !t
	case string:
		return t == "" || t == "0"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toList(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return append([]any(nil), t...)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

// number is the widened form of a numeric value.
type number struct {
	isFloat bool
	i       int64
	f       float64
	typ     reflect.Type
}

func toNumber(v any) (number, error) {
	if s, ok := v.(string); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return number{i: i, typ: reflect.TypeOf(int64(0))}, nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return number{isFloat: true, f: f, typ: reflect.TypeOf(float64(0))}, nil
		}
		return number{}, fmt.Errorf("value %q is not numeric", s)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{i: rv.Int(), typ: rv.Type()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return number{i: int64(rv.Uint()), typ: rv.Type()}, nil
	case reflect.Float32, reflect.Float64:
		return number{isFloat: true, f: rv.Float(), typ: rv.Type()}, nil
	}
	return number{}, fmt.Errorf("value of type %T is not numeric", v)
}

// addNumbers sums a and b. The result keeps the type of a when it can hold
// the sum. Otherwise integers widen to int64 and floats to float64.
func addNumbers(a, b any) (any, error) {
	x, err := toNumber(a)
	if err != nil {
		return nil, err
	}
	y, err := toNumber(b)
	if err != nil {
		return nil, err
	}

	if !x.isFloat && !y.isFloat {
		sum := x.i + y.i
		if (y.i > 0 && sum < x.i) || (y.i < 0 && sum > x.i) {
			return float64(x.i) + float64(y.i), nil
		}
		if !intFits(x.typ, sum) {
			return sum, nil
		}
		return reflect.ValueOf(sum).Convert(x.typ).Interface(), nil
	}

	xf, yf := x.f, y.f
	if !x.isFloat {
		xf = float64(x.i)
	}
	if !y.isFloat {
		yf = float64(y.i)
	}
	if x.isFloat && !reflect.New(x.typ).Elem().OverflowFloat(xf+yf) {
		return reflect.ValueOf(xf + yf).Convert(x.typ).Interface(), nil
	}
	return xf + yf, nil
}

// intFits reports whether typ can hold n without wrapping.
func intFits(typ reflect.Type, n int64) bool {
	v := reflect.New(typ).Elem()
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return n >= 0 && !v.OverflowUint(uint64(n))
	default:
		return !v.OverflowInt(n)
	}
}

func negate(v any) (any, error) {
	n, err := toNumber(v)
	if err != nil {
		return nil, err
	}
	if n.isFloat {
		return -n.f, nil
	}
	return -n.i, nil
}
