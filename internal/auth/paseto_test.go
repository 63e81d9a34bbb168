package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

var pasetoTestKey = []byte("0123456789abcdef0123456789abcdef")

func TestPasetoCreateAndVerify_Success(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(pasetoTestKey)
	if err != nil {
		t.Fatalf("NewPasetoService error: %v", err)
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
}

func TestPasetoVerify_Expired(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(pasetoTestKey)
	if err != nil {
		t.Fatalf("NewPasetoService error: %v", err)
	}

	tok, err := svc.CreateToken(uuid.New(), -1*time.Minute)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}

	_, err = svc.VerifyToken(tok)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestPasetoVerify_Garbage(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(pasetoTestKey)
	if err != nil {
		t.Fatalf("NewPasetoService error: %v", err)
	}

	_, err = svc.VerifyToken("v4.local.garbage")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewPasetoService_BadKeyLength(t *testing.T) {
	t.Parallel()

	if _, err := NewPasetoService([]byte("too-short")); err == nil {
		t.Fatalf("expected error for short key, got nil")
	}
}
