package auth

import (
	"net/http"
)

var anonymous = &User{Username: "anonymous"}

// NoAuth lets every request through as the anonymous user
type NoAuth struct{}

// NewNoAuth creates a new NoAuth authenticator
func NewNoAuth() *NoAuth {
	return &NoAuth{}
}

// Authenticate always returns the anonymous user
func (a *NoAuth) Authenticate(r *http.Request) (*User, error) {
	return anonymous, nil
}

// Middleware passes every request through
func (a *NoAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}
