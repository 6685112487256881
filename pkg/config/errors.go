package config

import (
	"errors"
	"fmt"
)

// ErrConfig matches every error returned by Load. Callers that only need to
// know "the configuration is unusable" can test with errors.Is(err, ErrConfig).
var ErrConfig = errors.New("config error")

// NotFoundError is returned when the configuration file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// Is reports whether target is ErrConfig.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrConfig
}

// ParseError is returned when the configuration document is not well-formed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConfig.
func (e *ParseError) Is(target error) bool {
	return target == ErrConfig
}

// ValidationError names the first missing or invalid field found in an
// otherwise well-formed document.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfig.
func (e *ValidationError) Is(target error) bool {
	return target == ErrConfig
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
