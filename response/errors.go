package response

import (
	"fmt"
	"net/http"
)

// Error is a service-level error carrying the HTTP status it maps to.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether the error maps to 404.
func (e *Error) IsNotFound() bool {
	return e.Code == http.StatusNotFound
}

func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, Message: message}
}

func BadRequest(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// Gateway wraps a payment gateway failure. A gateway fault is a backend
// fault from the caller's perspective, never a 4xx.
func Gateway(message string, err error) *Error {
	return &Error{Code: http.StatusBadGateway, Message: message, Err: err}
}

// Persistence wraps a database write/read failure.
func Persistence(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message, Err: err}
}

// Notification wraps a template render or email send failure.
func Notification(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message, Err: err}
}

// Internal wraps any other unexpected failure.
func Internal(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message, Err: err}
}
