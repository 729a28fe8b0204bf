// Package remote classifies failures returned by the remote data gateway.
//
// A RejectedError means the store received the request and refused it (constraint violation,
// permission denied, malformed filter). Any other non-nil error is treated as a network or
// unexpected failure: the request may or may not have reached the store.
package remote

import (
	"errors"
	"fmt"
)

// ErrRejected matches any *RejectedError via errors.Is.
var ErrRejected = errors.New("remote rejected request")

// RejectedError describes a refusal reported by the store.
type RejectedError struct {
	// Op is the gateway operation, e.g. "profiles.update".
	Op string
	// Status is the HTTP status for REST backends; 0 otherwise.
	Status int
	// Code is the store's error code (PostgREST or SQLSTATE).
	Code    string
	Message string
	Details string
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request rejected"
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Code)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// Is reports ErrRejected as a match so callers need not type-assert.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// Reject returns a RejectedError for op with the given code and message.
func Reject(op, code, message string) *RejectedError {
	return &RejectedError{Op: op, Code: code, Message: message}
}

// IsRejected reports whether err (or anything it wraps) is a store refusal.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
