package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockmirror/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreatedEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.EqualValues(t, 201, body["status"])
	assert.Equal(t, map[string]interface{}{"id": "1"}, body["data"])
	assert.NotContains(t, body, "errors")
}

func TestValidationErrorDefaultsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationError(rec, "", map[string]string{"name": "name is required"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, map[string]interface{}{"name": "name is required"}, body["errors"])
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NotFound(rec)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode(t, rec)["message"])
}
