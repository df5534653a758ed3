// Package httperr defines the application's error taxonomy and the single
// dispatch point that renders every uncaught failure into the API's error
// envelope.  Handlers and services raise errors where they detect them and
// never shape HTTP responses themselves.
package httperr

import "net/http"

// Error is a domain error carrying an HTTP status, a stable machine-readable
// code and a human message.  Details is free-form extra context that is safe
// to show to clients.
type Error struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *Error) Error() string { return e.Message }

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(code, message string) *Error {
	return New(http.StatusUnauthorized, code, message)
}

func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(http.StatusConflict, code, message)
}
