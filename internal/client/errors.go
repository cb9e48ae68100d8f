package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ConflictError reports a rejected conditional update: the version token sent
// as precondition no longer matches the server's current revision. It is a
// distinct type, never folded into APIError, because the caller's next step
// is conflict resolution rather than a retry or an error toast.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict: component was modified by another user"
}

// APIError is any other non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// ValidationError reports a draft that failed local validation. It is raised
// before any network call and never reaches the server.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid draft: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsConflict reports whether err is a rejected conditional update.
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsValidation reports whether err is a local draft validation failure.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
