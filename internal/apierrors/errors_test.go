package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiredhikari/eix/internal/storage"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrCodePackageNotFound, "Package not found", http.StatusNotFound, map[string]string{"package": "dev-libs/foo"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodePackageNotFound, resp.Error.Code)
	assert.Equal(t, "dev-libs/foo", resp.Error.Details["package"])
}

func TestMapStorageError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"not found", storage.ErrNotFound, ErrCodeIndexNotFound, http.StatusServiceUnavailable},
		{"wrapped unavailable", fmt.Errorf("load: %w", storage.ErrStorageUnavailable), ErrCodeStorageUnavailable, http.StatusServiceUnavailable},
		{"remote error", &storage.RemoteError{Backend: storage.BackendS3, Category: storage.CategoryNetwork, Op: storage.OpDownload, Err: errors.New("x")}, ErrCodeStorageUnavailable, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, status := MapStorageError(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, status)
		})
	}
}
