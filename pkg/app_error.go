package pkg

import "fmt"

// AppError is an error meant to be returned to API clients: a stable code, a
// human readable message and the HTTP status it maps to.
type AppError struct {
	Code       string
	Message    string
	Field      string
	HTTPStatus int
	Err        error
}

// HTTPError is the JSON envelope written for an AppError. The wrapped cause is never exposed.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func NewDomainErrorSimple(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func NewDomainError(code, message string, err error, status int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPStatus: status}
}

// WithField returns a copy of e naming the offending input field.
func (e *AppError) WithField(field string) *AppError {
	out := *e
	out.Field = field
	return &out
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) ToHTTPError() HTTPError {
	return HTTPError{Code: e.Code, Message: e.Message, Field: e.Field}
}
