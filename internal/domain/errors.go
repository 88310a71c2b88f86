package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
	Code() string
}

// Error codes carried in the {"error": {"code", "message"}} envelope.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConfig       = "CONFIG_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates missing or malformed input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure, e.g. editing a preset template
	ForbiddenError struct {
		Message string
	}

	// ConfigError indicates a missing server-side credential or setting
	ConfigError struct {
		Message string
	}

	// UpstreamError indicates the generative backend failed after any fallback
	UpstreamError struct {
		Message string
		Err     error
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }
func (e *ConfigError) Error() string       { return e.Message }
func (e *UpstreamError) Error() string     { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }
func (e *ConfigError) StatusCode() int       { return http.StatusInternalServerError }
func (e *UpstreamError) StatusCode() int     { return http.StatusBadGateway }

// Code implementations (HTTPError interface)
func (e *NotFoundError) Code() string     { return CodeNotFound }
func (e *ValidationError) Code() string   { return CodeValidation }
func (e *UnauthorizedError) Code() string { return CodeUnauthorized }
func (e *ForbiddenError) Code() string    { return CodeForbidden }
func (e *ConfigError) Code() string       { return CodeConfig }
func (e *UpstreamError) Code() string     { return CodeInternal }

// Is lets errors.Is match typed errors against the sentinels below.
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }
func (e *ConfigError) Is(target error) bool       { return target == ErrConfig }
func (e *UpstreamError) Is(target error) bool     { return target == ErrUpstream }

// Unwrap exposes the underlying client error.
func (e *UpstreamError) Unwrap() error { return e.Err }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConfig       = errors.New("configuration error")
	ErrUpstream     = errors.New("generation backend error")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, folder, template)
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

// Code implements the HTTPError interface
func (e *ConflictError) Code() string {
	return CodeConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
