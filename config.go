// File: confy/config.go
package confy

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds a configuration document loaded from a TOML file.
// It bundles the live tree, the document's known location, and the
// reverse mapping of dotted paths to the files their values came from.
type Config struct {
	path     string            // document location, empty until Load or Save
	data     map[string]any    // live tree, file:// markers already dereferenced
	fileVars map[string]string // dotted path -> resolved target of a file:// marker
	warn     func(format string, args ...any)
}

// New creates an empty Config with no document path.
func New() *Config {
	return &Config{
		data:     make(map[string]any),
		fileVars: make(map[string]string),
		warn:     stderrWarn,
	}
}

// stderrWarn is the default diagnostics sink.
func stderrWarn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// SetWarnHandler replaces the sink that receives non-fatal load/save
// diagnostics (unreadable indirection targets and the like).
// A nil fn restores the default stderr sink.
func (c *Config) SetWarnHandler(fn func(format string, args ...any)) {
	if fn == nil {
		fn = stderrWarn
	}
	c.warn = fn
}

// Load reads the TOML document at path, replacing any previously held
// state. file:// markers are dereferenced and the reverse mapping is
// rebuilt from scratch. Returns ErrConfigNotFound if the document does
// not exist.
func (c *Config) Load(path string) error {
	fileData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	data := make(map[string]any)
	if err := toml.Unmarshal(fileData, &data); err != nil {
		return fmt.Errorf("failed to parse TOML config file '%s': %w", path, err)
	}

	c.path = path
	c.data = data
	c.fileVars = make(map[string]string)
	c.resolveFileVars()

	return nil
}

// Get retrieves the value at a dotted path.
// The second return value reports whether the path exists; Get never
// fails for a missing or mistyped path.
func (c *Config) Get(path string) (any, bool) {
	return getNestedValue(c.data, path)
}

// GetOr retrieves the value at a dotted path, or def when the path does
// not resolve.
func (c *Config) GetOr(path string, def any) any {
	if value, ok := getNestedValue(c.data, path); ok {
		return value
	}
	return def
}

// Set stores value at a dotted path, creating intermediate tables as
// needed. A non-table value sitting at an intermediate segment is
// replaced by a fresh table and its old value is lost.
func (c *Config) Set(path string, value any) {
	setNestedValue(c.data, path, value)
}

// ListSections returns the top-level keys whose value is a table, in the
// order the document serializes them (lexical).
func (c *Config) ListSections() []string {
	sections := make([]string, 0)
	for _, key := range sortedKeys(c.data) {
		if _, isTable := c.data[key].(map[string]any); isTable {
			sections = append(sections, key)
		}
	}
	return sections
}

// ListVariables returns the non-table keys of the named section, or the
// non-table top-level keys when section is empty. An absent section, or
// one holding a non-table value, yields an empty list.
func (c *Config) ListVariables(section string) []string {
	table := c.data
	if section != "" {
		value, ok := getNestedValue(c.data, section)
		if !ok {
			return []string{}
		}
		table, ok = value.(map[string]any)
		if !ok {
			return []string{}
		}
	}

	variables := make([]string, 0)
	for _, key := range sortedKeys(table) {
		if _, isTable := table[key].(map[string]any); !isTable {
			variables = append(variables, key)
		}
	}
	return variables
}

// Data returns a deep copy of the document tree. Mutating the copy does
// not affect the Config.
func (c *Config) Data() map[string]any {
	return deepCopyMap(c.data)
}

// Path returns the document's known location, or an empty string for a
// handle that has never been loaded or saved.
func (c *Config) Path() string {
	return c.path
}
