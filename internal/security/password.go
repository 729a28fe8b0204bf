package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash is returned by ParseAdminHash for values that are not bcrypt hashes.
var ErrMalformedHash = errors.New("malformed admin password hash")

// AdminHash is a bcrypt hash of the shared admin credential, as configured in ADMIN_PASSWORD_HASH.
type AdminHash []byte

// ParseAdminHash checks that s is a bcrypt hash.
func ParseAdminHash(s string) (AdminHash, error) {
	if _, err := bcrypt.Cost([]byte(s)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	return AdminHash(s), nil
}

// HashAdminPassword hashes password for ADMIN_PASSWORD_HASH. A cost of zero or less uses bcrypt.DefaultCost;
// other values are clamped to bcrypt's range.
func HashAdminPassword(password string, cost int) (AdminHash, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	cost = max(bcrypt.MinCost, min(cost, bcrypt.MaxCost))
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	return AdminHash(b), nil
}

// Matches reports whether password hashes to h.
func (h AdminHash) Matches(password string) bool {
	return bcrypt.CompareHashAndPassword(h, []byte(password)) == nil
}

// Cost returns the bcrypt cost h was generated with.
func (h AdminHash) Cost() int {
	c, _ := bcrypt.Cost(h)
	return c
}

func (h AdminHash) String() string { return string(h) }
