package errors

import (
	"net/http"

	"parishfinder/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// WithMessage swaps the user-facing message, keeping code and status.
// Used to surface short upstream client-error messages verbatim.
func (e *BaseError) WithMessage(message string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   message,
		details:   e.details,
	}
}

// Predefined error types
var (
	// Validation errors: bad user input, rejected before any network call.
	ErrEmptyQuery = NewBaseError(
		http.StatusBadRequest,
		"EMPTY_QUERY",
		"Please enter a location",
		"",
	)

	ErrQueryTooShort = NewBaseError(
		http.StatusBadRequest,
		"QUERY_TOO_SHORT",
		"Location must be at least 2 characters",
		"",
	)

	ErrQueryTooLong = NewBaseError(
		http.StatusBadRequest,
		"QUERY_TOO_LONG",
		"Location is too long",
		"",
	)

	ErrQueryInvalidChars = NewBaseError(
		http.StatusBadRequest,
		"QUERY_INVALID_CHARS",
		"Invalid characters in location",
		"",
	)

	ErrInvalidCoordinates = NewBaseError(
		http.StatusBadRequest,
		"INVALID_COORDINATES",
		"Invalid coordinates",
		"",
	)

	ErrLatitudeRange = NewBaseError(
		http.StatusBadRequest,
		"LATITUDE_OUT_OF_RANGE",
		"Latitude must be between -90 and 90",
		"",
	)

	ErrLongitudeRange = NewBaseError(
		http.StatusBadRequest,
		"LONGITUDE_OUT_OF_RANGE",
		"Longitude must be between -180 and 180",
		"",
	)

	// Geocoding found nothing; cached as a negative result.
	ErrLocationNotFound = NewBaseError(
		http.StatusNotFound,
		"LOCATION_NOT_FOUND",
		"Location not found. Try a different zip code or city name.",
		"",
	)

	// Upstream 4xx that carried no usable message.
	ErrInvalidRequest = NewBaseError(
		http.StatusBadRequest,
		"INVALID_REQUEST",
		"Invalid request. Please try a different location.",
		"",
	)

	// Transient upstream failure, surfaced after the retry budget is spent.
	ErrServiceUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"SERVICE_UNAVAILABLE",
		"Service temporarily unavailable. Please try again in a moment.",
		"",
	)

	ErrSourceNotConfigured = NewBaseError(
		http.StatusInternalServerError,
		"SOURCE_NOT_CONFIGURED",
		"Server configuration error",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"An unexpected error occurred. Please try again.",
		"",
	)
)

// Response unified API response structure, shared with the HTTP layer so
// the error middleware can render AppErrors without importing delivery.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}
