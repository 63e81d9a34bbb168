package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := hashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	if !verifyPassword(hash, "correct horse battery staple") {
		t.Fatalf("correct password did not verify")
	}
	if verifyPassword(hash, "wrong password") {
		t.Fatalf("wrong password verified")
	}
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	t.Parallel()

	h1, err := hashPassword("same input")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	h2, err := hashPassword("same input")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password are identical")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	if verifyPassword("not-a-hash", "anything") {
		t.Fatalf("malformed hash verified")
	}
	if verifyPassword("", "anything") {
		t.Fatalf("empty hash verified")
	}
}

func TestResetToken(t *testing.T) {
	t.Parallel()

	tok, err := generateResetToken()
	if err != nil {
		t.Fatalf("generateResetToken error: %v", err)
	}
	// 32 random bytes, hex encoded
	if len(tok) != 64 {
		t.Fatalf("unexpected token length: %d", len(tok))
	}

	other, err := generateResetToken()
	if err != nil {
		t.Fatalf("generateResetToken error: %v", err)
	}
	if tok == other {
		t.Fatalf("two generated tokens are identical")
	}

	if hashResetToken(tok) == tok {
		t.Fatalf("stored form must not equal the plaintext")
	}
	if hashResetToken(tok) != hashResetToken(tok) {
		t.Fatalf("hash is not deterministic")
	}
}
