package errors

import (
	"errors"
	"net/http"
)

// Domain errors shared by the store, the slot engine and the booking flow.
var (
	ErrStoreUnavailable = errors.New("booking store unavailable")
	ErrInvalidIndex     = errors.New("booking index out of range")
	ErrInvalidSlot      = errors.New("time is not a bookable slot")
	ErrInvalidDate      = errors.New("invalid date")
	ErrSlotTaken        = errors.New("slot already booked")
	ErrInvalidCreds     = errors.New("invalid credentials")
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	ErrForbidden    = func(msg string) *HTTPError { return NewHTTPError(http.StatusForbidden, msg) }
	ErrBadRequest   = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
)

// FromDomain maps a service error to the HTTPError returned to clients.
func FromDomain(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, ErrInvalidIndex):
		return NewHTTPError(http.StatusNotFound, "Booking not found")
	case errors.Is(err, ErrSlotTaken):
		return NewHTTPError(http.StatusConflict, "Selected time slot is no longer available")
	case errors.Is(err, ErrInvalidSlot), errors.Is(err, ErrInvalidDate):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCreds):
		return NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, ErrStoreUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, "Booking store unavailable")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
