// Package config holds the value handling shared by the ConfigStore adapters.
//
// Settings are addressed by dotted keys ("retrieval.k"). On disk they are
// grouped into tables, one per prefix, so the file stays readable.
package config

import (
	"maps"
	"strings"
)

// Values maps dotted keys to decoded values.
type Values map[string]any

// String returns the string stored at key.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the integer stored at key. TOML decodes integers as int64.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	return 0
}

// Float returns the number stored at key. "temperature = 1" decodes as an
// integer and is widened.
func (v Values) Float(key string) float64 {
	switch n := v[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Bool returns the boolean stored at key.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}

// Flatten converts nested tables into dotted keys:
// {"llm": {"model": "x"}} becomes {"llm.model": "x"}.
func Flatten(m map[string]any) Values {
	out := make(Values, len(m))
	flattenInto(out, m, "")
	return out
}

func flattenInto(out Values, m map[string]any, prefix string) {
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(out, nested, full)
			continue
		}
		out[full] = value
	}
}

// Nest is the inverse of Flatten. A key that is both a value and a table
// prefix keeps the table; the scalar is dropped.
func (v Values) Nest() map[string]any {
	root := make(map[string]any)
	for key, value := range v {
		parts := strings.Split(key, ".")
		table := root
		for _, part := range parts[:len(parts)-1] {
			next, ok := table[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				table[part] = next
			}
			table = next
		}
		leaf := parts[len(parts)-1]
		if _, isTable := table[leaf].(map[string]any); isTable {
			continue
		}
		table[leaf] = value
	}
	return root
}
