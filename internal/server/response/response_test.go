package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOKMergesCounters(t *testing.T) {
	rec := httptest.NewRecorder()

	OK(rec, Envelope{"upserts": 3, "skips": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["upserts"])
	assert.Equal(t, float64(1), body["skips"])
}

func TestFailEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	BadRequest(rec, "preferred_source is not a known provider")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "preferred_source is not a known provider", body["error"])
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"lock contention", errors.NewLockError("sync"), http.StatusConflict, "job already running"},
		{"validation", errors.NewValidationError("probe_key", "must not be empty"), http.StatusBadRequest, ""},
		{"not found", &errors.NotFoundError{Resource: "vehicle", Key: "x"}, http.StatusNotFound, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}
