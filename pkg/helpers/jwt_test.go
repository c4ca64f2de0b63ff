package helpers

import (
	"testing"
	"time"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("super-secret"), TTL: time.Hour}

	tok, exp, err := m.Generate(42, "a@x.com")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry should be in the future")
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	uid, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID error: %v", err)
	}
	if uid != 42 {
		t.Fatalf("uid mismatch: got %d want 42", uid)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email mismatch: got %q", claims.Email)
	}
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("secret"), TTL: -time.Second}
	tok, _, err := m.Generate(1, "a@x.com")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := m.Parse(tok); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("right-secret"), TTL: time.Hour}
	tok, _, err := m.Generate(1, "a@x.com")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	other := &JWTManager{Secret: []byte("wrong-secret"), TTL: time.Hour}
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("expected error for wrong secret, got nil")
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	m := &JWTManager{Secret: []byte("secret"), TTL: time.Hour}
	if _, err := m.Parse("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token, got nil")
	}
}
