package service

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is returned for malformed or out-of-enum input
type ValidationError struct {
	Field   string
	Message string
	Status  int
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error(), Status: http.StatusUnprocessableEntity}
}

func required(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg, Status: http.StatusUnprocessableEntity}
}

// errNoFields is the 400 returned for an empty partial update
var errNoFields = &ValidationError{Message: "No fields to update", Status: http.StatusBadRequest}

var (
	// ErrNotFound means no task matched both the id and the caller's scope
	ErrNotFound = errors.New("Task not found")
	// ErrUnauthenticated means the route needs an authenticated user
	ErrUnauthenticated = errors.New("Not authenticated")
)

// UpstreamError wraps a database or external provider failure
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
