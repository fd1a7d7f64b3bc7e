// File: confy/helper.go
package confy

import (
	"sort"
	"strings"
)

// getNestedValue looks up a dot-notation path in a nested map.
// Any missing segment or non-map intermediate yields (nil, false).
func getNestedValue(nested map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	var current any = nested

	for _, segment := range segments {
		currentMap, isMap := current.(map[string]any)
		if !isMap {
			return nil, false
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil, false
		}
		current = value
	}

	return current, true
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// It creates intermediate maps if they don't exist.
// If a segment exists but is not a map, it will be overwritten by a new map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	// Iterate through segments up to the second-to-last one
	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		next, exists := current[segment]
		if !exists {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
			continue
		}

		if nextMap, isMap := next.(map[string]any); isMap {
			current = nextMap
		} else {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
		}
	}

	current[segments[len(segments)-1]] = value
}

// deepCopyMap returns an independent copy of a document tree.
func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = deepCopyValue(value)
	}
	return out
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return deepCopyMap(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = deepCopyValue(elem)
		}
		return out
	case []map[string]any:
		// Array-of-tables form produced by the TOML decoder
		out := make([]map[string]any, len(v))
		for i, elem := range v {
			out[i] = deepCopyMap(elem)
		}
		return out
	default:
		return v
	}
}

// sortedKeys returns map keys in lexical order, matching the order the
// TOML encoder emits them in.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
