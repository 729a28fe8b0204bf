package security

import "time"

// NewTestTokenProvider returns a TokenProvider with a fixed secret for tests in other packages.
func NewTestTokenProvider() (*TokenProvider, error) {
	return NewTokenProvider([]byte("test-session-secret"), "test-issuer", "test-audience", time.Hour)
}
