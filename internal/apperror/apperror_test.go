package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundCode(t *testing.T) {
	e := NotFound("Pomodoro session", "42")

	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.Equal(t, "POMODORO_SESSION_NOT_FOUND", e.Code)
	assert.Equal(t, "Pomodoro session not found", e.Message)
	assert.Equal(t, "42", e.Extra["resource_id"])
}

func TestBodyShape(t *testing.T) {
	e := Conflict("Email already registered", "email")

	body := e.Body()
	inner, ok := body["error"].(map[string]any)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, "CONFLICT", inner["code"])
	assert.Equal(t, "Email already registered", inner["message"])
	assert.Equal(t, http.StatusConflict, inner["status_code"])
	assert.Equal(t, "email", inner["conflict_field"])
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("update task: %w", Unauthorized(""))

	e, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, e.Status)
	assert.Equal(t, "Authentication required", e.Message)

	e, ok = As(errors.New("boom"))
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, e.Status)
}

func TestValidationFieldErrors(t *testing.T) {
	e := Validation("Invalid request body", []FieldError{{Field: "email", Tag: "email", Message: "must be a valid email"}})

	assert.Equal(t, http.StatusUnprocessableEntity, e.Status)
	assert.Len(t, e.Extra["field_errors"], 1)
}
