package application

import (
	"errors"
	"net/http"
)

// Kind classifies an application error for the HTTP layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindBadRequest
	KindConflict
	KindNotFound
	KindForbidden
	KindAuth
	KindRateLimit
	KindStore
	KindUnavailable
)

// AppError is the error type every service returns.
type AppError struct {
	Kind    Kind
	Message string
	// Field names the offending input, if any.
	Field string
	Err   error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func ValidationError(field, msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg, Field: field}
}

func BadRequestError(msg string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: msg}
}

func ConflictError(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func NotFoundError(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func ForbiddenError(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func AuthError(msg string) *AppError {
	return &AppError{Kind: KindAuth, Message: msg}
}

func RateLimitError(msg string) *AppError {
	return &AppError{Kind: KindRateLimit, Message: msg}
}

// StoreError wraps a persistence failure. The cause is logged, never sent to clients.
func StoreError(msg string, err error) *AppError {
	return &AppError{Kind: KindStore, Message: msg, Err: err}
}

func UnavailableError(msg string) *AppError {
	return &AppError{Kind: KindUnavailable, Message: msg}
}

// KindOf returns the kind of err, or KindStore for anything that is not an *AppError.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStore
}

// HTTPStatus maps an error kind onto its response status.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindAuth:
		return http.StatusUnauthorized
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
