package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling at the
// handler boundary.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource is absent or not owned by the
	// requester. The two cases are deliberately indistinguishable so the
	// API does not leak resource existence.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}

	// InsufficientTokensError indicates the user's token balance cannot
	// cover the estimated cost of an AI call.
	InsufficientTokensError struct {
		Message string
	}

	// UnsupportedMediaError indicates a file kind no extractor handles
	UnsupportedMediaError struct {
		Message string
	}

	// UpstreamError indicates a failed call to an external collaborator
	// (object store, extraction, transcription, or completion).
	UpstreamError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string           { return e.Message }
func (e *ValidationError) Error() string         { return e.Message }
func (e *UnauthorizedError) Error() string       { return e.Message }
func (e *ForbiddenError) Error() string          { return e.Message }
func (e *InsufficientTokensError) Error() string { return e.Message }
func (e *UnsupportedMediaError) Error() string   { return e.Message }
func (e *UpstreamError) Error() string           { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Insufficient balance reports 400: the request is well-formed but cannot
// be satisfied with the current balance.
func (e *InsufficientTokensError) StatusCode() int { return http.StatusBadRequest }
func (e *UnsupportedMediaError) StatusCode() int   { return http.StatusBadRequest }
func (e *UpstreamError) StatusCode() int           { return http.StatusBadGateway }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrUpstream           = errors.New("upstream service error")
)

// Is implementations so typed errors match their sentinels via errors.Is()
func (e *NotFoundError) Is(target error) bool           { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool         { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool       { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool          { return target == ErrForbidden }
func (e *InsufficientTokensError) Is(target error) bool { return target == ErrInsufficientTokens }
func (e *UnsupportedMediaError) Is(target error) bool   { return target == ErrUnsupportedMedia }
func (e *UpstreamError) Is(target error) bool           { return target == ErrUpstream }
