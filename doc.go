// File: confy/doc.go

// Package confy provides access to TOML configuration documents with
// dotted-path lookups and file:// indirection variables.
//
// A document is loaded into a plain nested tree addressed by dotted paths
// (e.g. "database.host"). String leaves of the form "file://<path>" are
// dereferenced on load: the referenced file's contents, trimmed of
// surrounding whitespace, replace the marker in the live tree, and the
// origin is remembered so Save can write modified values back to the
// external file and restore the marker in the serialized document.
// Relative references resolve against the document's own directory, and a
// leading "~" expands to the caller's home directory.
//
// Quick Start:
//
//	cfg := confy.New()
//	if err := cfg.Load("app.toml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	host := cfg.GetOr("database.host", "localhost")
//	cfg.Set("database.port", 5433)
//
//	if err := cfg.Save(""); err != nil {
//	    log.Fatal(err)
//	}
//
// Unresolvable references degrade to warnings on a configurable sink and
// the marker string is left in place; only a missing document (Load) or a
// missing destination (Save) surface as errors.
//
// A Config is not safe for concurrent use. Callers sharing a handle
// across goroutines must serialize access externally, e.g. with one mutex
// per handle.
package confy
