package security

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAdminPassword_RoundTrip(t *testing.T) {
	h, err := HashAdminPassword("letmein", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashAdminPassword: %v", err)
	}
	if !h.Matches("letmein") {
		t.Error("hash should match its password")
	}
	if h.Matches("letmein ") || h.Matches("") {
		t.Error("hash matched a different password")
	}
	parsed, err := ParseAdminHash(h.String())
	if err != nil {
		t.Fatalf("ParseAdminHash: %v", err)
	}
	if !parsed.Matches("letmein") {
		t.Error("parsed hash should match")
	}
}

func TestHashAdminPassword_ClampsCost(t *testing.T) {
	testCases := []struct {
		in, want int
	}{
		{0, bcrypt.DefaultCost},
		{-3, bcrypt.DefaultCost},
		{1, bcrypt.MinCost},
		{5, 5},
	}
	for _, tc := range testCases {
		h, err := HashAdminPassword("x", tc.in)
		if err != nil {
			t.Fatalf("HashAdminPassword(cost %d): %v", tc.in, err)
		}
		if got := h.Cost(); got != tc.want {
			t.Errorf("cost %d: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseAdminHash_Malformed(t *testing.T) {
	for _, s := range []string{"", "plaintext", "$2a$10$short"} {
		if _, err := ParseAdminHash(s); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("ParseAdminHash(%q) err = %v, want ErrMalformedHash", s, err)
		}
	}
}
