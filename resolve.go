// File: confy/resolve.go
package confy

import (
	"os"
	"path/filepath"
	"strings"
)

// markerPrefix introduces a file indirection variable in a document.
const markerPrefix = "file://"

// fileVar records one marker found during a load walk.
type fileVar struct {
	path   string // dotted path of the leaf holding the marker
	target string // marker remainder, before resolution
}

// resolveFileVars dereferences file:// markers in the freshly parsed tree
// and rebuilds the reverse mapping consulted by Save. The walk is
// read-only; replacements are applied in a second pass. Targets that
// cannot be read leave the marker string in place and emit a warning, but
// their reverse-mapping entry is still recorded so a later Set+Save can
// create the file.
func (c *Config) resolveFileVars() {
	for _, fv := range collectFileVars(c.data, "") {
		target := c.resolveTarget(fv.target)
		c.fileVars[fv.path] = target

		if target == "" {
			c.warn("empty file reference at %s", fv.path)
			continue
		}

		info, err := os.Stat(target)
		if err != nil {
			c.warn("file not found: %s", target)
			continue
		}
		if info.IsDir() {
			// Degenerate reference such as "file://" with a known
			// document directory; nothing to dereference.
			c.warn("file not found: %s", target)
			continue
		}

		content, err := os.ReadFile(target)
		if err != nil {
			c.warn("could not read file %s: %v", target, err)
			continue
		}

		// File contents are never re-scanned for markers.
		setNestedValue(c.data, fv.path, strings.TrimSpace(string(content)))
	}
}

// collectFileVars walks a table pre-order, tracking the dotted path from
// the root, and gathers every string leaf carrying the marker prefix.
// Only tables are descended into; arrays are opaque leaves.
func collectFileVars(table map[string]any, prefix string) []fileVar {
	vars := make([]fileVar, 0)

	for _, key := range sortedKeys(table) {
		dotted := key
		if prefix != "" {
			dotted = prefix + "." + key
		}

		switch v := table[key].(type) {
		case map[string]any:
			vars = append(vars, collectFileVars(v, dotted)...)
		case string:
			if strings.HasPrefix(v, markerPrefix) {
				vars = append(vars, fileVar{
					path:   dotted,
					target: strings.TrimPrefix(v, markerPrefix),
				})
			}
		}
	}

	return vars
}

// resolveTarget expands a marker remainder into a usable file path:
// "~" expands to the caller's home directory, and relative paths are
// anchored at the directory of the document being loaded. With no known
// document path, relative targets are left as given.
func (c *Config) resolveTarget(raw string) string {
	p := raw
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if p != "" && !filepath.IsAbs(p) && c.path != "" {
		p = filepath.Join(filepath.Dir(c.path), p)
	}
	return p
}
