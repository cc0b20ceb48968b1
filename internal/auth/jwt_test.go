package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("user-1", "user@example.com", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "user@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != Issuer {
		t.Fatalf("expected issuer %q, got %q", Issuer, claims.Issuer)
	}

	if _, err := manager.ParseToken(token + "tampered"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
	if _, err := NewJWTManager("other", time.Hour).ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign secret, got %v", err)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute)
	issued := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issued }

	token, err := manager.GenerateToken("user-1", "user@example.com", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manager.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := manager.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestJWTManager_RejectsForeignIssuer(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "admin",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewJWTManager("secret", time.Hour).ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected issuer mismatch to be rejected, got %v", err)
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken("user", "user@example.com", "user"); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestJWTManager_DefaultTTL(t *testing.T) {
	if got := NewJWTManager("secret", 0).TTL(); got != 24*time.Hour {
		t.Fatalf("expected 24h default ttl, got %s", got)
	}
	if got := NewJWTManager("secret", time.Minute).TTL(); got != time.Minute {
		t.Fatalf("expected configured ttl, got %s", got)
	}
}
