package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceWithCost(bcrypt.MinCost)

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash %q does not look like bcrypt output", hash)
	}

	if err := ps.Verify(hash, "password123"); err != nil {
		t.Errorf("Verify with correct password: %v", err)
	}
	if err := ps.Verify(hash, "wrong-password"); err == nil {
		t.Error("Verify with wrong password should fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	ps := NewPasswordServiceWithCost(bcrypt.MinCost)

	a, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password must differ (random salt)")
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	ps := NewPasswordServiceWithCost(bcrypt.MinCost)

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("passwords over 72 bytes must be rejected")
	}
}
