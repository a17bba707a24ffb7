package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	token, err := issuer.Issue("jane")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	subject, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "jane" {
		t.Errorf("expected subject %q, got %q", "jane", subject)
	}
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", 30*time.Minute)
	other := NewTokenIssuer("secret-b", 30*time.Minute)

	token, err := issuer.Issue("jane")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("expected verification to fail with a different secret")
	}
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Nanosecond)

	token, err := issuer.Issue("jane")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected verification to fail for expired token")
	}
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.Verify(token); err == nil {
			t.Errorf("expected verification to fail for %q", token)
		}
	}
}

func TestTokenIssuer_TamperedPayload(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	token, err := issuer.Issue("jane")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	tampered := parts[0] + ".eyJzdWIiOiJtYWxsb3J5In0." + parts[2]

	if _, err := issuer.Verify(tampered); err == nil {
		t.Error("expected verification to fail for tampered payload")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("expected mismatched password to fail")
	}
}
