// Package session guards the admin dashboard behind a single shared credential.
package session

import (
	"crypto/subtle"
	"errors"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/security"
)

// CookieName is the HttpOnly cookie carrying the session token.
const CookieName = "admin_session"

// ErrNoCredential is returned by NewGate when neither a password nor a hash is configured.
var ErrNoCredential = errors.New("no admin credential configured")

// Gate checks a submitted credential against the configured admin secret.
type Gate struct {
	password []byte
	hash     security.AdminHash
}

// NewGate returns a Gate. When hash is set it is used instead of password; a malformed hash is an error.
func NewGate(password, hash string) (*Gate, error) {
	if password == "" && hash == "" {
		return nil, ErrNoCredential
	}
	if hash != "" {
		h, err := security.ParseAdminHash(hash)
		if err != nil {
			return nil, err
		}
		return &Gate{hash: h}, nil
	}
	return &Gate{password: []byte(password)}, nil
}

// Check reports whether credential matches. An empty credential is never accepted.
func (g *Gate) Check(credential string) bool {
	if credential == "" {
		return false
	}
	if g.hash != nil {
		return g.hash.Matches(credential)
	}
	return subtle.ConstantTimeCompare([]byte(credential), g.password) == 1
}
