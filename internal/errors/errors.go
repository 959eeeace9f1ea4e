// Package errors consolidates error definitions for the whole project.
//
// It provides sentinel errors for every failure category in the pipeline,
// category checking functions, and error wrapping utilities.
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// Normalization errors
	ErrNormalization  = errors.New("normalization failed")
	ErrUnknownSource  = errors.New("unknown source")
	ErrMissingSection = errors.New("missing data section")

	// Storage errors
	ErrPartitionWrite = errors.New("partition write failed")
	ErrInvalidPath    = errors.New("invalid partition path")

	// Catalog/query errors
	ErrQuery            = errors.New("query failed")
	ErrRelationNotFound = errors.New("relation not found")
	ErrNoData           = errors.New("no data")

	// Ingestion errors
	ErrFetch             = errors.New("fetch failed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingField  = errors.New("missing required field")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// New is a convenience wrapper for errors.New
var New = errors.New

// IsNormalization returns true if err originated in a normalizer.
func IsNormalization(err error) bool {
	return errors.Is(err, ErrNormalization) ||
		errors.Is(err, ErrMissingSection) ||
		errors.Is(err, ErrUnknownSource)
}

// IsQuery returns true if err is a catalog/query error.
func IsQuery(err error) bool {
	return errors.Is(err, ErrQuery) ||
		errors.Is(err, ErrRelationNotFound)
}

// IsNoData returns true if err means a symbol/source simply has no rows yet.
// This is a legitimate not-yet-ingested state, not a failure.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrRelationNotFound)
}

// IsRetriable returns true if the error is potentially retriable.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrFetch) ||
		errors.Is(err, ErrRateLimitExceeded)
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewUnknownSource creates an unknown-source error listing the alternatives.
func NewUnknownSource(source string, available []string) error {
	return fmt.Errorf("source %q (available: %v): %w", source, available, ErrUnknownSource)
}

// NewMissingSection creates a missing-section normalization error.
func NewMissingSection(path, section string) error {
	return fmt.Errorf("%s: no %q section: %w", path, section, ErrMissingSection)
}

// NewPartitionWrite creates a write error attributable to one partition group.
func NewPartitionWrite(symbol, source string, year int, err error) error {
	return fmt.Errorf("partition symbol=%s source=%s year=%d: %v: %w",
		symbol, source, year, err, ErrPartitionWrite)
}

// NewValidation creates a configuration validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}
