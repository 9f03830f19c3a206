// Package auth guards the query API.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Supported values of auth.type
const (
	TypeNone  = "none"
	TypeBasic = "basic"
)

// Realm is sent in WWW-Authenticate challenges
const Realm = "eix"

// User represents an authenticated user
type User struct {
	Username string
}

// Authenticator defines the authentication interface
type Authenticator interface {
	// Authenticate validates request credentials and returns user info
	Authenticate(r *http.Request) (*User, error)

	// Middleware returns HTTP middleware for the auth method
	Middleware() func(http.Handler) http.Handler
}

// New builds the authenticator named by authType
func New(authType, usersFile string, logger *slog.Logger) (Authenticator, error) {
	switch authType {
	case TypeNone, "":
		return NewNoAuth(), nil
	case TypeBasic:
		return NewBasicAuth(usersFile, logger)
	default:
		return nil, fmt.Errorf("unknown auth type %q", authType)
	}
}
