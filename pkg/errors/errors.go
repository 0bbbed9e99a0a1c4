// Package errors provides custom error types for the wayfind system.
// These errors enable programmatic error checking and make the
// degrade-or-abort policy of the aggregation pipeline explicit.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
// It's an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the wayfind system.
var (
	// ErrSourceUnavailable indicates an upstream source could not be reached
	// or answered with a non-success status.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedPayload indicates an upstream payload did not have the
	// expected JSON/XML shape. Treated the same as ErrSourceUnavailable by
	// the pipeline: the source's contribution degrades to empty.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrSyncFailed indicates the index bulk request reported per-document
	// errors. Always fatal for the run.
	ErrSyncFailed = errors.New("index sync failed")

	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")
)

// SourceError represents a failure to fetch or decode one upstream source.
type SourceError struct {
	Source     string // source tag, e.g. "facilities", "arcgis-parking"
	Endpoint   string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source %s (%s) returned status %d", e.Source, e.Endpoint, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("source %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("source %s failed", e.Source)
}

// Unwrap implements errors.Unwrap.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewSourceError creates a new SourceError.
func NewSourceError(source, endpoint string, statusCode int, err error) *SourceError {
	return &SourceError{Source: source, Endpoint: endpoint, StatusCode: statusCode, Err: err}
}

// DocumentFailure is one failing document from an index bulk response.
type DocumentFailure struct {
	Index  string
	ID     string
	Reason string
}

// SyncError represents per-document failures reported by an index bulk
// request. The run must terminate with a non-zero status when one occurs.
type SyncError struct {
	Index    string
	Failures []DocumentFailure
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.ID)
	}
	return fmt.Sprintf("bulk sync to index %s failed for %d document(s): %s",
		e.Index, len(e.Failures), strings.Join(ids, ", "))
}

// Is implements errors.Is support.
func (e *SyncError) Is(target error) bool {
	return target == ErrSyncFailed
}

// WrapResource wraps an error with operation, resource type, and identifier
// context in a consistent format.
func WrapResource(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s %s %s: %w", op, resource, id, err)
}
