package domain

import (
	"errors"
	"time"
)

// Workspace is a named group of users. CreatedBy is a weak reference to a user ID and may dangle.
type Workspace struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}

// Summary is the subset of a workspace embedded in membership rows.
type Summary struct {
	ID   string
	Name string
}

// Summary returns the embedded form of w.
func (w Workspace) Summary() Summary {
	return Summary{ID: w.ID, Name: w.Name}
}

// Validate validates the workspace for persistence. Returns an error describing the first validation failure.
func (w *Workspace) Validate() error {
	if w.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
