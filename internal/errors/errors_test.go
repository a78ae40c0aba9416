package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", ErrValidation("view", "unknown view"), http.StatusBadRequest, CodeValidationFailed, "Request validation failed"},
		{"not found", NotFoundError("match 42"), http.StatusNotFound, CodeNotFound, "match 42 not found"},
		{"unsupported format", UnsupportedFormatError("pdf"), http.StatusBadRequest, CodeUnsupportedFormat, `unsupported export format "pdf"`},
		{"invalid request", InvalidRequestWithError(errors.New("bad json")), http.StatusBadRequest, CodeInvalidRequest, "Invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "view", Message: "is required"},
		{Field: "top_n", Message: "must be at most 1000"},
	})

	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
	assert.Equal(t, "top_n", details.Errors[1].Field)
}

func TestAppError(t *testing.T) {
	cause := errors.New("disk gone")
	err := NewStorageError("write export", cause).WithContext("path", "/tmp/x.csv")

	assert.Equal(t, "[STORAGE] write export: disk gone", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "/tmp/x.csv", err.Context["path"])

	plain := NewConfigError("invalid phases section", nil)
	assert.Equal(t, "[CONFIG] invalid phases section", plain.Error())
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeInvalidFilter, "Invalid Filter", "bad team", "/api/views/x").
		WithExtension("field", "team").
		WithExtension("type", "overridden")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, TypeInvalidFilter, got["type"], "standard members win over extensions")
	assert.Equal(t, "team", got["field"])
	assert.Equal(t, float64(http.StatusBadRequest), got["status"])
	assert.Equal(t, "/api/views/x", got["instance"])
}

func TestWriteProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteProblem(rec, NewProblemDetails(http.StatusServiceUnavailable, TypeDataUnavailable, "Data Unavailable", "", ""))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ContentTypeProblem, rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "detail")
}
