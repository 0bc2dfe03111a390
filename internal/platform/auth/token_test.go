package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only-000")

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer(testSigningKey, "clinic-test", DefaultTokenTTL)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return iss
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer(nil, "clinic", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	iss := newTestIssuer(t)
	id := uuid.New()

	tok, exp, err := iss.Issue(id, RoleDoctor)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if d := time.Until(exp); d < DefaultTokenTTL-time.Minute || d > DefaultTokenTTL+time.Minute {
		t.Errorf("expected ~7 day expiry, got %s", d)
	}

	p, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.AccountID != id || p.Role != RoleDoctor {
		t.Errorf("unexpected principal %+v", p)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	iss := newTestIssuer(t)
	iss.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	tok, _, err := iss.Issue(uuid.New(), RolePatient)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	iss.now = time.Now
	if _, err := iss.Parse(tok); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	tok, _, err := newTestIssuer(t).Issue(uuid.New(), RolePatient)
	if err != nil {
		t.Fatal(err)
	}
	other, _ := NewTokenIssuer([]byte(strings.Repeat("x", 40)), "clinic-test", time.Hour)
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestTokenIssuer_WrongIssuer(t *testing.T) {
	tok, _, _ := newTestIssuer(t).Issue(uuid.New(), RolePatient)
	other, _ := NewTokenIssuer(testSigningKey, "someone-else", time.Hour)
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("expected issuer mismatch to be rejected")
	}
}

func TestTokenIssuer_RejectsNoneAndUnknownRole(t *testing.T) {
	iss := newTestIssuer(t)
	now := time.Now()

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "clinic-test", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		AccountID:        uuid.NewString(),
		Role:             RoleFinance,
	})
	s, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := iss.Parse(s); err == nil {
		t.Error("expected alg=none to be rejected")
	}

	admin := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "clinic-test", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		AccountID:        uuid.NewString(),
		Role:             "admin",
	})
	s, _ = admin.SignedString(testSigningKey)
	if _, err := iss.Parse(s); err == nil {
		t.Error("expected unknown role to be rejected")
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "clinic-test"},
		AccountID:        uuid.NewString(),
		Role:             RolePatient,
	})
	s, _ = noExp.SignedString(testSigningKey)
	if _, err := iss.Parse(s); err == nil {
		t.Error("expected token without expiry to be rejected")
	}
}
