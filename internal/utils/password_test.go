package utils

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("password1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "password1" {
		t.Fatal("hash must not equal plaintext")
	}
	if cost, err := bcrypt.Cost([]byte(hash)); err != nil || cost != PasswordCost {
		t.Errorf("cost = %d, %v; want %d", cost, err, PasswordCost)
	}
	if !CheckPassword(hash, "password1") {
		t.Error("correct password rejected")
	}
	for _, wrong := range []string{"password2", "Password1", "", "password1 "} {
		if CheckPassword(hash, wrong) {
			t.Errorf("wrong password %q accepted", wrong)
		}
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, _ := HashPassword("same-password")
	b, _ := HashPassword("same-password")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "password1") {
		t.Error("malformed hash must not verify")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("x", 100)); err == nil {
		t.Error("expected bcrypt to reject passwords over 72 bytes")
	}
}

func TestOpaqueToken(t *testing.T) {
	raw, hash, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if len(raw) != 64 || len(hash) != 64 {
		t.Errorf("unexpected lengths raw=%d hash=%d", len(raw), len(hash))
	}
	if HashToken(raw) != hash {
		t.Error("hash must be reproducible from raw")
	}
	if !TokenHashEqual(hash, HashToken(raw)) {
		t.Error("equal hashes should compare equal")
	}
	if TokenHashEqual("", "") {
		t.Error("empty hashes must never match")
	}
}
