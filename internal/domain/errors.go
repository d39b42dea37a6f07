package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the machine-readable error category returned in every error body.
// Clients branch on it instead of inspecting status codes or message text.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindInvalidParent      ErrorKind = "invalid_parent"
	KindInvalidFolder      ErrorKind = "invalid_folder"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindAccessDenied       ErrorKind = "access_denied"
	KindPermissionDenied   ErrorKind = "permission_denied"
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindLastAdmin          ErrorKind = "last_admin"
	KindVersionConflict    ErrorKind = "version_conflict"
	KindInvalidState       ErrorKind = "invalid_state"
	KindUpstream           ErrorKind = "upstream_error"
	KindInternal           ErrorKind = "internal"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
	Kind() ErrorKind
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrUpstream     = errors.New("upstream service failed")
)

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
		Reason  ErrorKind
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
		Reason  ErrorKind
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
		Reason  ErrorKind
	}

	// StateError indicates an operation that is illegal in the resource's current state
	StateError struct {
		Message string
	}

	// UpstreamError wraps a failure of an external dependency (LLM, transcription)
	UpstreamError struct {
		Message string
		Err     error
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }
func (e *StateError) Error() string        { return e.Message }
func (e *UpstreamError) Error() string     { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }
func (e *StateError) StatusCode() int        { return http.StatusConflict }
func (e *UpstreamError) StatusCode() int     { return http.StatusBadGateway }

func (e *NotFoundError) Kind() ErrorKind { return KindNotFound }
func (e *StateError) Kind() ErrorKind    { return KindInvalidState }
func (e *UpstreamError) Kind() ErrorKind { return KindUpstream }

func (e *ValidationError) Kind() ErrorKind {
	if e.Reason == "" {
		return KindValidation
	}
	return e.Reason
}

func (e *UnauthorizedError) Kind() ErrorKind {
	if e.Reason == "" {
		return KindUnauthorized
	}
	return e.Reason
}

func (e *ForbiddenError) Kind() ErrorKind {
	if e.Reason == "" {
		return KindPermissionDenied
	}
	return e.Reason
}

// Is lets the typed errors match their sentinels so callers can keep using errors.Is().
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }
func (e *StateError) Is(target error) bool        { return target == ErrInvalidState }
func (e *UpstreamError) Is(target error) bool     { return target == ErrUpstream }

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string    // Human-readable error message
	ResourceType string    // Type of resource (user, member, task)
	ResourceID   string    // ID of the existing/conflicting resource
	Reason       ErrorKind // Defaults to KindConflict
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

func (e *ConflictError) Kind() ErrorKind {
	if e.Reason == "" {
		return KindConflict
	}
	return e.Reason
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewNotFound builds a NotFoundError for the given resource.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// ErrAccessDenied is returned when the caller has no membership in the workspace.
// The message is identical whether or not the workspace exists.
func ErrAccessDenied() *ForbiddenError {
	return &ForbiddenError{Message: "access denied to workspace", Reason: KindAccessDenied}
}

// ErrInvalidCredentials is shared by the unknown-email and wrong-password paths.
func ErrInvalidCredentials() *UnauthorizedError {
	return &UnauthorizedError{Message: "invalid credentials", Reason: KindInvalidCredentials}
}
