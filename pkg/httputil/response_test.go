package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteJSON(rec, http.StatusCreated, map[string]string{"key": "value"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "value", body["key"])
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteSuccess(rec, map[string]bool{"success": true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter)
		wantStatus int
		wantError  string
	}{
		{
			name:       "WriteError",
			write:      func(w http.ResponseWriter) { WriteError(w, http.StatusConflict, errors.New("boom")) },
			wantStatus: http.StatusConflict,
			wantError:  "boom",
		},
		{
			name:       "WriteErrorMessage",
			write:      func(w http.ResponseWriter) { WriteErrorMessage(w, http.StatusTeapot, "short and stout") },
			wantStatus: http.StatusTeapot,
			wantError:  "short and stout",
		},
		{
			name:       "WriteBadRequest",
			write:      func(w http.ResponseWriter) { WriteBadRequest(w, "identifier is required") },
			wantStatus: http.StatusBadRequest,
			wantError:  "identifier is required",
		},
		{
			name:       "WriteUnauthorized",
			write:      func(w http.ResponseWriter) { WriteUnauthorized(w, "not authenticated") },
			wantStatus: http.StatusUnauthorized,
			wantError:  "not authenticated",
		},
		{
			name:       "WriteForbidden",
			write:      func(w http.ResponseWriter) { WriteForbidden(w, "Invalid or missing CSRF token") },
			wantStatus: http.StatusForbidden,
			wantError:  "Invalid or missing CSRF token",
		},
		{
			name:       "WriteInternalError",
			write:      func(w http.ResponseWriter) { WriteInternalError(w, errors.New("oops")) },
			wantStatus: http.StatusInternalServerError,
			wantError:  "oops",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}
