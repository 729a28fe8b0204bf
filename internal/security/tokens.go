package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminSubject is the subject of every session token; there is a single shared admin identity.
const AdminSubject = "admin"

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or signed for another issuer or audience.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret is returned by NewTokenProvider when no signing secret is supplied.
	ErrEmptySecret = errors.New("session secret is empty")
)

// SessionClaims are the claims carried by an admin session token.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenProvider issues and validates HS256 session tokens.
type TokenProvider struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenProvider returns a TokenProvider signing with secret. Tokens expire ttl after issue.
func NewTokenProvider(secret []byte, issuer, audience string, ttl time.Duration) (*TokenProvider, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &TokenProvider{
		secret:   slices.Clone(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// RandomSecret returns n random bytes for use as a per-process signing secret.
func RandomSecret(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Issue signs a new session token and returns it with its id and expiry.
func (p *TokenProvider) Issue() (token, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := p.now().UTC()
	expiresAt = now.Add(p.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   AdminSubject,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, jti, expiresAt, nil
}

// Validate parses tokenString and checks signature, expiry, issuer and audience.
func (p *TokenProvider) Validate(tokenString string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	if p.audience != "" {
		opts = append(opts, jwt.WithAudience(p.audience))
	}
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject != AdminSubject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func generateJTI() (string, error) {
	b, err := RandomSecret(16)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
