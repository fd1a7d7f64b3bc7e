// File: confy/type.go
package confy

import (
	"fmt"
	"strconv"
)

// The typed accessors convert between the value kinds a document tree can
// hold: strings, int64 and float64 from the TOML decoder, bools, and
// whatever Set stored (notably untyped int literals).

// String retrieves a string value at a dotted path.
// Numeric and boolean values are formatted; a nil value reads as "".
func (c *Config) String(path string) (string, error) {
	val, found := c.Get(path)
	if !found {
		return "", fmt.Errorf("path not found: %s", path)
	}

	switch v := val.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string for path %s", val, path)
	}
}

// Int64 retrieves an int64 value at a dotted path.
// Floats are truncated, parsable strings are parsed, and booleans read as
// 0 or 1.
func (c *Config) Int64(path string) (int64, error) {
	val, found := c.Get(path)
	if !found {
		return 0, fmt.Errorf("path not found: %s", path)
	}

	switch v := val.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		if i, err := strconv.ParseInt(v, 0, 64); err == nil { // Base 0 for auto-detection (e.g., "0xFF")
			return i, nil
		} else {
			if f, ferr := strconv.ParseFloat(v, 64); ferr == nil {
				return int64(f), nil // Truncate
			}
			return 0, fmt.Errorf("cannot convert string %q to int64 for path %s: %w", v, path, err)
		}
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert type %T to int64 for path %s", val, path)
	}
}

// Bool retrieves a boolean value at a dotted path.
// Numbers read as 0=false, non-zero=true; strings go through
// strconv.ParseBool.
func (c *Config) Bool(path string) (bool, error) {
	val, found := c.Get(path)
	if !found {
		return false, fmt.Errorf("path not found: %s", path)
	}

	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		} else {
			return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", v, path, err)
		}
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert type %T to bool for path %s", val, path)
	}
}

// Float64 retrieves a float64 value at a dotted path.
// Integers widen, parsable strings are parsed, and booleans read as 0 or 1.
func (c *Config) Float64(path string) (float64, error) {
	val, found := c.Get(path)
	if !found {
		return 0.0, fmt.Errorf("path not found: %s", path)
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		} else {
			return 0.0, fmt.Errorf("cannot convert string %q to float64 for path %s: %w", v, path, err)
		}
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	default:
		return 0.0, fmt.Errorf("cannot convert type %T to float64 for path %s", val, path)
	}
}
