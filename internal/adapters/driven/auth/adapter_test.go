package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/quill-labs/qbconnect/internal/core/domain"
)

func TestAdapter_PasswordHashing(t *testing.T) {
	adapter := NewAdapter("test-secret")

	hash, err := adapter.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !adapter.VerifyPassword("correct-password", hash) {
		t.Error("VerifyPassword() rejected the correct password")
	}
	if adapter.VerifyPassword("wrong-password", hash) {
		t.Error("VerifyPassword() accepted a wrong password")
	}
	if adapter.VerifyPassword("correct-password", "not-a-hash") {
		t.Error("VerifyPassword() accepted a malformed hash")
	}
}

func TestAdapter_TokenRoundTrip(t *testing.T) {
	adapter := NewAdapter("test-secret")

	now := time.Now()
	claims := &domain.TokenClaims{
		Subject:   "operator",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}

	token, err := adapter.GenerateToken(claims)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	parsed, err := adapter.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if parsed.Subject != "operator" {
		t.Errorf("Subject = %q, want operator", parsed.Subject)
	}
	if parsed.ExpiresAt != claims.ExpiresAt {
		t.Errorf("ExpiresAt = %d, want %d", parsed.ExpiresAt, claims.ExpiresAt)
	}
}

func TestAdapter_ExpiredToken(t *testing.T) {
	adapter := NewAdapter("test-secret")

	now := time.Now()
	token, err := adapter.GenerateToken(&domain.TokenClaims{
		Subject:   "operator",
		IssuedAt:  now.Add(-2 * time.Hour).Unix(),
		ExpiresAt: now.Add(-time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	_, err = adapter.ParseToken(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("ParseToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestAdapter_InvalidToken(t *testing.T) {
	adapter := NewAdapter("test-secret")

	_, err := adapter.ParseToken("not.a.jwt")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestAdapter_WrongSecret(t *testing.T) {
	signer := NewAdapter("secret-one")
	verifier := NewAdapter("secret-two")

	now := time.Now()
	token, err := signer.GenerateToken(&domain.TokenClaims{
		Subject:   "operator",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	_, err = verifier.ParseToken(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}
