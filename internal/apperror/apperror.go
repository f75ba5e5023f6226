// Package apperror defines the errors services hand back to the HTTP layer.
// Each one carries the status code and machine-readable code it is rendered with.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeNotFound     = "NOT_FOUND"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

type Error struct {
	Status  int
	Code    string
	Message string
	Extra   map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Body is the JSON document written for the error.
func (e *Error) Body() map[string]any {
	inner := map[string]any{
		"code":        e.Code,
		"message":     e.Message,
		"status_code": e.Status,
	}
	for k, v := range e.Extra {
		inner[k] = v
	}

	return map[string]any{"error": inner}
}

type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message, Extra: map[string]any{}}
}

func NotFound(resource, id string) *Error {
	e := New(http.StatusNotFound, CodeNotFound, resource+" not found")
	if resource != "" {
		e.Code = strings.ToUpper(strings.ReplaceAll(resource, " ", "_")) + "_NOT_FOUND"
		e.Extra["resource_type"] = resource
	}
	if id != "" {
		e.Extra["resource_id"] = id
	}

	return e
}

func Conflict(message, field string) *Error {
	e := New(http.StatusConflict, CodeConflict, message)
	if field != "" {
		e.Extra["conflict_field"] = field
	}

	return e
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}

	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Validation(message string, fields []FieldError) *Error {
	e := New(http.StatusUnprocessableEntity, CodeValidation, message)
	if len(fields) > 0 {
		e.Extra["field_errors"] = fields
	}

	return e
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, message)
}

// TooManyRequests carries retry_after in seconds.
func TooManyRequests(retryAfter int) *Error {
	e := New(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", retryAfter))
	e.Extra["retry_after"] = retryAfter

	return e
}

func Internal() *Error {
	return New(http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// As unwraps err into an *Error. Anything else becomes a generic 500.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return Internal(), false
}
