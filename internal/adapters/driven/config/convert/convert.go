// Package convert turns loosely typed configuration values (as decoded from
// TOML or set in memory) into the types the ConfigStore port promises.
package convert

import (
	"fmt"
	"sort"
	"strings"
)

// String returns v as a string, or "" if it is not one.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int returns v as an int, or 0. TOML integers decode as int64.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Bool returns v as a bool, or false.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// StringSlice returns v as a []string, or nil. TOML arrays decode as []any;
// non-string elements are skipped.
func StringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// StringMap collects the table stored under key from a flat value map: a map
// value stored at key itself, plus any "key.sub" entries. Non-string values
// are formatted with %v.
func StringMap(data map[string]any, key string) map[string]string {
	out := make(map[string]string)
	switch t := data[key].(type) {
	case map[string]string:
		for k, v := range t {
			out[k] = v
		}
	case map[string]any:
		for k, v := range t {
			out[k] = text(v)
		}
	}

	prefix := key + "."
	for k, v := range data {
		if sub, ok := strings.CutPrefix(k, prefix); ok {
			out[sub] = text(v)
		}
	}
	return out
}

// DropTable removes key and every "key.sub" entry from data.
func DropTable(data map[string]any, key string) {
	delete(data, key)
	prefix := key + "."
	for k := range data {
		if strings.HasPrefix(k, prefix) {
			delete(data, k)
		}
	}
}

// Flatten converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range Flatten(nested, fullKey) {
				out[k] = v
			}
			continue
		}
		out[fullKey] = value
	}
	return out
}

// Nest is the inverse of Flatten, so dotted keys are written as TOML tables.
// When a key is both a scalar and a table prefix, the table wins.
func Nest(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}

		leaf := parts[len(parts)-1]
		if m, ok := flat[key].(map[string]any); ok {
			table, ok := node[leaf].(map[string]any)
			if !ok {
				table = make(map[string]any, len(m))
				node[leaf] = table
			}
			for k, v := range m {
				table[k] = v
			}
			continue
		}
		if _, isTable := node[leaf].(map[string]any); isTable {
			continue
		}
		node[leaf] = flat[key]
	}
	return out
}

func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
