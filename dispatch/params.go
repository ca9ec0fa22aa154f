package dispatch

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// present treats absent, nil, empty, zero and false values as missing
func present(params map[string]interface{}, key string) bool {
	v, ok := params[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}

func presentAll(params map[string]interface{}, keys ...string) bool {
	for _, k := range keys {
		if !present(params, k) {
			return false
		}
	}
	return true
}

// stringParam renders an id-or-key style value as a string. Numbers arrive
// as float64 from JSON and are printed without a fraction.
func stringParam(params map[string]interface{}, key string) string {
	switch t := params[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// intParam coerces a numeric id. Strings must hold a whole decimal number.
func intParam(params map[string]interface{}, key string) (int, error) {
	switch t := params[key].(type) {
	case int:
		return t, nil
	case float64:
		if t != math.Trunc(t) {
			return 0, invalidNumber(key, t)
		}
		return int(t), nil
	case json.Number:
		n, err := strconv.Atoi(t.String())
		if err != nil {
			return 0, invalidNumber(key, t)
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, invalidNumber(key, t)
		}
		return n, nil
	default:
		return 0, invalidNumber(key, t)
	}
}

// ints coerces several numeric ids, stopping at the first bad one
func ints(params map[string]interface{}, keys ...string) ([]int, error) {
	out := make([]int, 0, len(keys))
	for _, k := range keys {
		n, err := intParam(params, k)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func invalidNumber(key string, v interface{}) error {
	return fmt.Errorf("%s must be a number, got %q", key, fmt.Sprint(v))
}

// without copies params minus the named keys. The intent's own map is never modified.
func without(params map[string]interface{}, keys ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// pick copies only the named keys that carry a value
func pick(params map[string]interface{}, keys ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if v, ok := params[k]; ok && v != nil {
			out[k] = v
		}
	}
	return out
}
