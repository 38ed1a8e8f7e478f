package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported operation")
	ErrInternal     = errors.New("internal error")
	ErrUnavailable  = errors.New("service unavailable")
)

// Specific errors.
var (
	ErrUnknownConstellation = fmt.Errorf("unknown constellation: %w", ErrInvalidInput)
	ErrNoSingleLetterCode   = fmt.Errorf("no single letter code: %w", ErrUnsupported)
	ErrDatabaseCorrupt      = fmt.Errorf("sbas database corrupt: %w", ErrInternal)
	ErrInvalidCoordinate    = fmt.Errorf("coordinate: %w", ErrInvalidInput)
	ErrInvalidSV            = fmt.Errorf("sv: %w", ErrInvalidInput)
	ErrInvalidSpelling      = fmt.Errorf("spelling: %w", ErrInvalidInput)
	ErrInvalidCOSPAR        = fmt.Errorf("cospar: %w", ErrInvalidInput)
	ErrInvalidDOMES         = fmt.Errorf("domes: %w", ErrInvalidInput)
	ErrEntryNotFound        = fmt.Errorf("sbas entry: %w", ErrNotFound)
	ErrNotReady             = fmt.Errorf("database not ready: %w", ErrUnavailable)
)

// ParseError reports text that could not be decoded into an identifier.
type ParseError struct {
	Input string // Offending text
	Err   error  // Underlying sentinel
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q: %v", e.Input, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// DatabaseError represents a structural problem found while building the SBAS database.
type DatabaseError struct {
	Source string // Data source name (embedded, file path, ...)
	Index  int    // Entry position in the source, -1 when not entry specific
	Reason string // What is wrong
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v: %s entry %d: %s", ErrDatabaseCorrupt, e.Source, e.Index, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrDatabaseCorrupt, e.Source, e.Reason)
}

// Unwrap returns ErrDatabaseCorrupt.
func (e *DatabaseError) Unwrap() error {
	return ErrDatabaseCorrupt
}

// ValidationError represents a detailed validation error.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidCoordinate
}

// StorageError represents an error while reading or writing a database file.
type StorageError struct {
	Operation string // Operation that failed (read, export, ...)
	Path      string // File path
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage error during %s for %s: %v",
			e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
