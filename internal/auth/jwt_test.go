package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTCreateAndVerify_Success(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTService([]byte("super-secret"))
	if err != nil {
		t.Fatalf("NewJWTService error: %v", err)
	}
	userID := uuid.New()

	tok, err := svc.CreateToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}

	claims, err := svc.VerifyToken(tok)
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if claims.UserID != userID.String() {
		t.Fatalf("userID mismatch: got %q want %q", claims.UserID, userID.String())
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		t.Fatalf("expiry %v not after issued-at %v", claims.ExpiresAt, claims.IssuedAt)
	}
}

func TestJWTVerify_Expired(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTService([]byte("secret"))
	if err != nil {
		t.Fatalf("NewJWTService error: %v", err)
	}

	tok, err := svc.CreateToken(uuid.New(), -1*time.Second)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}

	_, err = svc.VerifyToken(tok)
	if err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestJWTVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewJWTService([]byte("right-secret"))
	if err != nil {
		t.Fatalf("NewJWTService error: %v", err)
	}
	verifier, err := NewJWTService([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("NewJWTService error: %v", err)
	}

	tok, err := issuer.CreateToken(uuid.New(), time.Hour)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}

	_, err = verifier.VerifyToken(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestJWTVerify_MalformedString(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTService([]byte("k"))
	if err != nil {
		t.Fatalf("NewJWTService error: %v", err)
	}

	_, err = svc.VerifyToken("not.a.jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTService(nil); err == nil {
		t.Fatalf("expected error for empty secret, got nil")
	}
}
