package confgroup

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGroup is returned when a group name is empty or blank.
	ErrEmptyGroup = errors.New("confgroup: group name is empty")

	// ErrNoSources is returned by resolvers configured to require at least one source.
	ErrNoSources = errors.New("confgroup: no configuration sources found")

	// ErrInvalidGroupPath is returned when a group name cannot be mapped to a path.
	ErrInvalidGroupPath = errors.New("confgroup: invalid group path")

	// ErrNilTarget is returned when Decode receives a nil target.
	ErrNilTarget = errors.New("confgroup: decode target is nil")
)

// SourceError reports a configuration source that could not be read or parsed.
// Loader passes it through unchanged (wrapped with context), so callers can use errors.As.
type SourceError struct {
	Group  string // Group being resolved
	Source string // Source identifier (e.g., a file path or "env:APP_")
	Err    error
}

// Error formats the failure with its source and group.
func (e *SourceError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("config source for group %q: %v", e.Group, e.Err)
	}
	return fmt.Sprintf("config source %s for group %q: %v", e.Source, e.Group, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
