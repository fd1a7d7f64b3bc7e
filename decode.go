// File: confy/decode.go
package confy

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Scan decodes the document subtree at basePath into target, which must
// be a non-nil pointer. An empty basePath scans the whole document.
// Decoding uses toml tags with weakly typed conversions, so string values
// convert into durations, numbers and slices where the target asks for
// them. An absent section scans as empty, leaving the target's zero
// values in place.
func (c *Config) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	var section any = c.data
	if basePath != "" {
		value, ok := getNestedValue(c.data, basePath)
		if !ok {
			value = map[string]any{}
		}
		section = value
	}

	sectionMap, ok := section.(map[string]any)
	if !ok {
		return fmt.Errorf("path %q refers to non-map value (type %T)", basePath, section)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("failed to decode subtree %q: %w", basePath, err)
	}

	return nil
}
