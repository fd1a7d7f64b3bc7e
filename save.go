// File: confy/save.go
package confy

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Save writes the document to path, or to the remembered location when
// path is empty. The current values of file-backed paths are pushed out
// to their target files first, then a copy of the tree with the file://
// markers restored is serialized atomically. The live tree keeps the
// dereferenced values, so Get after Save still returns them.
// On success the handle remembers the destination.
func (c *Config) Save(path string) error {
	dest := path
	if dest == "" {
		dest = c.path
	}
	if dest == "" {
		return ErrNoConfigPath
	}

	destDir := filepath.Dir(dest)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory '%s': %w", destDir, err)
	}

	c.writeFileVars()

	out := deepCopyMap(c.data)
	c.restoreMarkers(out, destDir)

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config data to TOML: %w", err)
	}

	if err := atomicWriteFile(dest, buf.Bytes()); err != nil {
		return err
	}

	c.path = dest
	return nil
}

// writeFileVars pushes the current value of every file-backed path out to
// its target file. Targets whose trimmed contents already match are left
// untouched. Failures are warned about and skipped so one bad target
// cannot abort the save. Non-string values are written with Go's default
// formatting; that includes a table left behind by a destructive Set
// below a file-backed key, which lands in the file as map syntax.
func (c *Config) writeFileVars() {
	paths := make([]string, 0, len(c.fileVars))
	for p := range c.fileVars {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, dotted := range paths {
		target := c.fileVars[dotted]
		if target == "" {
			continue
		}

		value, ok := getNestedValue(c.data, dotted)
		if !ok {
			// Stale entry, the tree has diverged structurally.
			continue
		}
		if s, isStr := value.(string); isStr && strings.HasPrefix(s, markerPrefix) {
			// The marker never resolved and was never overwritten,
			// nothing to push out.
			continue
		}

		valueStr := fmt.Sprintf("%v", value)
		if existing, err := os.ReadFile(target); err == nil {
			if strings.TrimSpace(string(existing)) == valueStr {
				// Unmodified value, leave the target file untouched.
				continue
			}
		}

		targetDir := filepath.Dir(target)
		if err := os.MkdirAll(targetDir, 0755); err != nil {
			c.warn("could not create directory %s: %v", targetDir, err)
			continue
		}
		if err := os.WriteFile(target, []byte(valueStr), 0644); err != nil {
			c.warn("could not write file %s: %v", target, err)
		}
	}
}

// restoreMarkers replaces file-backed leaves in the save copy with their
// file:// markers. Entries whose dotted path no longer resolves to a leaf
// are stale and silently skipped.
func (c *Config) restoreMarkers(out map[string]any, destDir string) {
	for dotted, target := range c.fileVars {
		segments := strings.Split(dotted, ".")

		current := out
		reachable := true
		for _, segment := range segments[:len(segments)-1] {
			next, exists := current[segment]
			if !exists {
				reachable = false
				break
			}
			nextMap, isMap := next.(map[string]any)
			if !isMap {
				reachable = false
				break
			}
			current = nextMap
		}
		if !reachable {
			continue
		}

		last := segments[len(segments)-1]
		if _, exists := current[last]; !exists {
			continue
		}
		current[last] = markerPrefix + markerPath(target, destDir)
	}
}

// markerPath renders target relative to the document directory when it
// lives underneath it, and unchanged otherwise.
func markerPath(target, destDir string) string {
	if target == "" || !filepath.IsAbs(target) {
		return target
	}
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return target
	}
	return rel
}

// atomicWriteFile writes data to path via a temp file in the same
// directory followed by a rename, so a failed write never truncates an
// existing document.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file to '%s': %w", path, err)
	}

	return nil
}
