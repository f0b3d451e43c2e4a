package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a referenced id is absent
	NotFoundError struct {
		Message string
	}

	// ParentNotFoundError indicates a folder create/move with an unresolvable parent
	ParentNotFoundError struct {
		Message  string
		ParentID string
	}

	// InvalidArgumentError indicates empty or malformed input
	InvalidArgumentError struct {
		Message string
	}

	// InvalidOperationError indicates a request that would corrupt the hierarchy
	// or break the file status state machine
	InvalidOperationError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string         { return e.Message }
func (e *ParentNotFoundError) Error() string   { return e.Message }
func (e *InvalidArgumentError) Error() string  { return e.Message }
func (e *InvalidOperationError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int         { return http.StatusNotFound }
func (e *ParentNotFoundError) StatusCode() int   { return http.StatusUnprocessableEntity }
func (e *InvalidArgumentError) StatusCode() int  { return http.StatusBadRequest }
func (e *InvalidOperationError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match typed errors against the sentinels
func (e *NotFoundError) Is(target error) bool         { return target == ErrNotFound }
func (e *ParentNotFoundError) Is(target error) bool   { return target == ErrParentNotFound }
func (e *InvalidArgumentError) Is(target error) bool  { return target == ErrInvalidArgument }
func (e *InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrParentNotFound   = errors.New("parent folder not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflict         = errors.New("already exists")

	// ErrValidation is kept as an alias so request validation reads naturally
	ErrValidation = ErrInvalidArgument
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (file, folder)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
