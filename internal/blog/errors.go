package blog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a slug or ID does not resolve, including
	// drafts requested through a public path.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when an operation needs a caller identity.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller does not own the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict matches any unique-constraint violation raised by a repository.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// username or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ConflictError reports which unique field rejected a write. It matches
// ErrConflict with errors.Is.
type ConflictError struct {
	Field string // e.g. "slug", "name", "username"
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: duplicate %s", e.Field)
}

// Is makes errors.Is(err, ErrConflict) true for every ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// conflictField extracts the field from a conflict error, or "" if err is
// not a conflict.
func conflictField(err error) (string, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Field, true
	}
	if errors.Is(err, ErrConflict) {
		return "", true
	}
	return "", false
}

// ValidationErrors maps form field names to a single message each. The key
// FormField carries errors that belong to no particular field.
type ValidationErrors map[string]string

// FormField is the key used for non-field errors.
const FormField = "form"

// Add records msg for field unless the field already has an error.
func (v ValidationErrors) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Has reports whether field has an error.
func (v ValidationErrors) Has(field string) bool {
	_, ok := v[field]
	return ok
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns v as an error, or nil when there is nothing to report.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// AsValidation unwraps validation errors from err.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
