package uri

import (
	"fmt"
)

// AliasFileError occurs when an alias file cannot be read or parsed.
type AliasFileError struct {
	Path string
	Err  error
}

func (e *AliasFileError) Error() string {
	return fmt.Sprintf("failed to load URI aliases from '%s': %v", e.Path, e.Err)
}

func (e *AliasFileError) Unwrap() error {
	return e.Err
}

// AliasValidationError occurs when an alias entry is incomplete.
type AliasValidationError struct {
	Path  string
	Index int
	Field string
}

func (e *AliasValidationError) Error() string {
	return fmt.Sprintf("alias %d in '%s': %s is required", e.Index, e.Path, e.Field)
}
