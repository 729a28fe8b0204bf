package remote

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRejected(t *testing.T) {
	rej := Reject("profiles.update", "42501", "permission denied")
	if !IsRejected(rej) {
		t.Error("RejectedError should be rejected")
	}
	wrapped := fmt.Errorf("update role: %w", rej)
	if !IsRejected(wrapped) {
		t.Error("wrapped RejectedError should be rejected")
	}
	var target *RejectedError
	if !errors.As(wrapped, &target) || target.Code != "42501" {
		t.Errorf("errors.As = %+v, want code 42501", target)
	}
	if IsRejected(errors.New("dial tcp: connection refused")) {
		t.Error("plain error should not be rejected")
	}
	if IsRejected(nil) {
		t.Error("nil should not be rejected")
	}
}

func TestRejectedError_Error(t *testing.T) {
	testCases := []struct {
		name string
		err  *RejectedError
		want string
	}{
		{"full", &RejectedError{Op: "workspaces.delete", Code: "23503", Message: "fk violation"}, "workspaces.delete: fk violation (23503)"},
		{"no op", &RejectedError{Message: "bad filter"}, "bad filter"},
		{"empty", &RejectedError{}, "request rejected"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}
