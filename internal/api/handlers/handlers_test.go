package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pomodoro/internal/apperror"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedOpenAPIConvertsToJSON(t *testing.T) {
	body, err := openapiJSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	for _, p := range []string{"/", "/api/auth/register", "/api/user", "/api/tasks", "/api/pomodoro/today", "/api/time-blocks/update-order", "/api/ws"} {
		assert.Contains(t, paths, p)
	}
}

func TestYAMLToJSONRejectsGarbage(t *testing.T) {
	_, err := yamlToJSON([]byte("openapi: [unterminated"))
	assert.Error(t, err)
}

func TestPathID(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil),
		map[string]string{"id": "0f5d5f2a-3c3e-4d59-8f2b-6a1f1d2c9e77"})
	id, err := pathID(req, "Task")
	require.NoError(t, err)
	assert.Equal(t, "0f5d5f2a-3c3e-4d59-8f2b-6a1f1d2c9e77", id)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "42"})
	_, err = pathID(req, "Time block")
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.Equal(t, "TIME_BLOCK_NOT_FOUND", e.Code)
}
