package errors

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned for any login failure: unknown
	// email, wrong password or non-active account. The causes are
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailAlreadyExists is returned when a write would violate email
	// uniqueness.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrClientNotFound is returned when a client lookup misses.
	ErrClientNotFound = errors.New("client not found")
	// ErrInvalidRole is returned when a request names an unknown role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidStatus is returned when a request names an unknown status.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidClientType is returned when a request names an unknown
	// client type.
	ErrInvalidClientType = errors.New("invalid client type")
	// ErrStoreUnavailable is returned when the store round-trip fails in a
	// way the caller may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError carries a status code alongside the envelope fields.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors collapse
// to a generic 500 so internal details never leak to the caller.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_ALREADY_EXISTS")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrClientNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CLIENT_NOT_FOUND")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_ROLE")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrInvalidClientType):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CLIENT_TYPE")
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return NewHTTPError(http.StatusServiceUnavailable, "store temporarily unavailable", "STORE_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
