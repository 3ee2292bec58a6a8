package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("super-secret"), 7*24*time.Hour)

	tok, err := s.Issue("user-123", "a@x.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "user-123" || claims.Subject != "user-123" {
		t.Fatalf("identity mismatch: %+v", claims)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email mismatch: %q", claims.Email)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 7*24*time.Hour {
		t.Fatalf("unexpected lifetime: %v", got)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenService([]byte("secret"), time.Hour)
	s.now = func() time.Time { return issuedAt }

	tok, err := s.Issue("u1", "u1@x.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	s.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	if _, err := s.Verify(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	s.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	if _, err := s.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService([]byte("right-secret"), time.Hour).Issue("u2", "")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenService([]byte("wrong-secret"), time.Hour).Verify(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "not.a.jwt", "abc"} {
		if _, err := NewTokenService([]byte("k"), time.Hour).Verify(in); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", in, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u3",
	})
	signed, err := tok.SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewTokenService(secret, time.Hour).Verify(signed); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512 token, got %v", err)
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u4"}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewTokenService(secret, time.Hour).Verify(signed); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for token without exp, got %v", err)
	}
}
