// File: confy/errors.go
package confy

import "errors"

var (
	// ErrConfigNotFound is returned by Load when the document path does
	// not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrNoConfigPath is returned by Save when no destination was given
	// and the handle has no remembered path.
	ErrNoConfigPath = errors.New("no config path specified")
)
