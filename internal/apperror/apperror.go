// Package apperror defines the application's error taxonomy.
//
// Services return these errors; the HTTP layer maps them onto status codes
// and the JSON error shapes the API promises (field-scoped validation maps,
// non_field_errors for credential failures, detail objects for permission
// problems). Nothing in this package knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrAuthentication = errors.New("authentication failed")
	ErrTokenInvalid   = errors.New("invalid token")
)

// AppError carries a sentinel (for errors.Is dispatch), a human-readable
// message, and an optional field name for field-scoped validation errors.
type AppError struct {
	Err     error  // sentinel error, one of the vars above
	Message string // human-readable error message
	Field   string // optional: request field the error is scoped to
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// InvalidState returns a non-field 400 error for operations the resource's
// current lifecycle state forbids (e.g. modifying an inactive habit).
// HTTP handlers render it as {"detail": message}.
func InvalidState(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
	}
}

// Forbidden returns an AppError for callers in the wrong session state,
// e.g. an authenticated user hitting an anonymous-only endpoint.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for requests missing valid credentials.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// InvalidCredentials returns the deliberately generic login failure.
// The message is identical whether the identifier or the password was
// wrong, so a caller cannot probe which accounts exist.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrAuthentication,
		Message: "Invalid login credentials",
	}
}

// InvalidToken returns the fixed token rejection error, scoped to the
// request field that carried the token ("refresh_token" on logout,
// "refresh" on the refresh endpoint).
func InvalidToken(field string) *AppError {
	return &AppError{
		Err:     ErrTokenInvalid,
		Message: "Invalid or expired token",
		Field:   field,
	}
}
