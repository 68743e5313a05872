// Package errors provides the error taxonomy for the fleetsync system.
// Typed errors let job bodies distinguish per-provider failures (isolated,
// counted) from store failures (fatal to one operation) and lock contention
// (abort with a distinct outcome).
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the fleetsync system.
var (
	// ErrNotFound indicates that a requested record was not found.
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss indicates that a provider cache entry is absent or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrLocked indicates that a named job lock is already held.
	ErrLocked = errors.New("job already running")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates that a provider is temporarily unavailable.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNoChanges indicates that reconciliation produced an identical record.
	ErrNoChanges = errors.New("no changes")
)

// ProviderError represents a bad response or shape from an external provider.
// It is isolated per provider/entity and never fatal to a batch.
type ProviderError struct {
	Provider   string
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ProviderError) Is(target error) bool {
	if e.StatusCode >= 500 {
		return target == ErrProviderUnavailable
	}
	return false
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, endpoint string, statusCode int, message string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// LockError indicates that a named lock could not be acquired because another
// instance of the job is already running.
type LockError struct {
	Name string
}

// Error implements the error interface.
func (e *LockError) Error() string {
	return fmt.Sprintf("lock %q is held by another run", e.Name)
}

// Is implements errors.Is support.
func (e *LockError) Is(target error) bool {
	return target == ErrLocked
}

// NewLockError creates a new LockError.
func NewLockError(name string) *LockError {
	return &LockError{Name: name}
}

// StoreError represents a read/write failure against the relational store.
// Fatal to the single operation it surrounds; the surrounding job must still
// attempt its terminal ledger write and lock release.
type StoreError struct {
	Operation string // "insert", "update", "delete", "select"
	Table     string
	Err       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("store error during %s on %s: %v", e.Operation, e.Table, e.Err)
	}
	return fmt.Sprintf("store error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError represents a malformed request body on an on-demand job,
// rejected before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ParseError represents a malformed body from a provider or feed.
type ParseError struct {
	Format  string // "json", "yaml"
	Source  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s parse error from %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError represents an error when a record is not found.
type NotFoundError struct {
	Resource string
	Key      string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Helper wrapping functions for common patterns.

// WrapStore wraps an error as a StoreError.
func WrapStore(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Operation: operation, Table: table, Err: err}
}

// WrapParse wraps an error as a ParseError.
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Source: source, Message: err.Error(), Err: err}
}

// WrapProvider wraps an error as a ProviderError.
func WrapProvider(provider, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Endpoint: endpoint, Message: err.Error(), Err: err}
}

// Helper functions for error checking.

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCacheMiss checks if an error is a cache miss.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// IsLocked checks if an error indicates lock contention.
func IsLocked(err error) bool {
	return errors.Is(err, ErrLocked)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsProviderUnavailable checks if an error indicates provider unavailability.
func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}
