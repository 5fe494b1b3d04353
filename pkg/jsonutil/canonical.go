// Package jsonutil provides deterministic JSON encoding. Hash chains
// require every writer to produce byte-identical output for the same
// value, which encoding/json alone does not guarantee for maps.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalMarshal encodes v as compact JSON with object keys in
// lexicographic order. The output is stable across processes and Go
// versions, making it safe to hash.
func CanonicalMarshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}

	// Round-trip through any so struct field order and map iteration
	// order stop mattering.
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}
	return appendValue(nil, tree)
}

func appendValue(dst []byte, v any) ([]byte, error) {
	switch node := v.(type) {
	case map[string]any:
		return appendObject(dst, node)
	case []any:
		dst = append(dst, '[')
		for i, elem := range node {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = appendValue(dst, elem); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	default:
		// string, float64, bool or nil after the round-trip.
		raw, err := json.Marshal(node)
		if err != nil {
			return nil, err
		}
		return append(dst, raw...), nil
	}
}

func appendObject(dst []byte, obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		dst = append(dst, name...)
		dst = append(dst, ':')
		if dst, err = appendValue(dst, obj[k]); err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}
