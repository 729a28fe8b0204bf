package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is a profile managed by the admin dashboard.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Summary is the subset of a user embedded in membership rows.
type Summary struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// Summary returns the embedded form of u.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Role is both a global user attribute and a per-membership attribute.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleClient Role = "client"
)

// ErrInvalidRole is returned by ParseRole for values outside the role enumeration.
var ErrInvalidRole = errors.New("invalid role")

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleMember, RoleClient}
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleClient:
		return true
	}
	return false
}

// ParseRole normalizes s (trimmed, lower-cased) and returns the matching Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
	}
	return nil
}
