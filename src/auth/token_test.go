package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	signed, err := m.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(signed)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
}

func TestValidateRejectsForeignKey(t *testing.T) {
	signed, err := NewTokenManager("secret-a", time.Hour).Generate("user-123")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = NewTokenManager("secret-b", time.Hour).Validate(signed)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate with wrong key = %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	m.ttl = -time.Minute

	signed, err := m.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := m.Validate(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate of expired token = %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate of garbage = %v, want ErrInvalidToken", err)
	}
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	m := NewTokenManager("test-secret", 0)
	if m.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", m.ttl, DefaultTokenTTL)
	}
}
