package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeUsers(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newBasic(t *testing.T) *BasicAuth {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	a, err := NewBasicAuth(writeUsers(t, "users:\n  - username: alice\n    password: \""+hash+"\"\n"), newTestLogger())
	require.NoError(t, err)
	return a
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func TestBasicAuth_Middleware(t *testing.T) {
	handler := newBasic(t).Middleware()(okHandler())

	tests := []struct {
		name     string
		user     string
		password string
		setAuth  bool
		status   int
		body     string
	}{
		{name: "valid", user: "alice", password: "s3cret", setAuth: true, status: http.StatusOK, body: "ok"},
		{name: "wrong password", user: "alice", password: "nope", setAuth: true, status: http.StatusUnauthorized},
		{name: "unknown user", user: "bob", password: "s3cret", setAuth: true, status: http.StatusUnauthorized},
		{name: "no credentials", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/packages", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
				return
			}
			assert.Equal(t, `Basic realm="eix"`, rec.Header().Get("WWW-Authenticate"))
			assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestNoAuth_Middleware(t *testing.T) {
	rec := httptest.NewRecorder()
	NewNoAuth().Middleware()(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	u, err := NewNoAuth().Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "anonymous", u.Username)
}

func TestNewBasicAuth_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{"invalid yaml", "users: [", "invalid YAML syntax"},
		{"missing password", "users:\n  - username: alice\n", "password hash are required"},
		{"plain password", "users:\n  - username: alice\n    password: hunter2\n", "not a bcrypt hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBasicAuth(writeUsers(t, tt.content), newTestLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}

	_, err := NewBasicAuth(filepath.Join(t.TempDir(), "missing.yaml"), newTestLogger())
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	a, err := New(TypeNone, "", newTestLogger())
	require.NoError(t, err)
	assert.IsType(t, &NoAuth{}, a)

	_, err = New("jwt", "", newTestLogger())
	assert.Error(t, err)
}
