package session

import (
	"errors"
	"testing"
	"time"

	"github.com/pulsefit/pulsefit-server/internal/db/models"
)

func TestIssueAndVerify(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	user := &models.User{ID: "u-1", Email: "ada@example.com"}

	tok, err := mgr.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := mgr.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Errorf("subject = %q, want u-1", claims.Subject)
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
}

func TestVerify_Expired(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)
	tok, err := mgr.Issue(&models.User{ID: "u-1", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := mgr.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken for expired token", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	tok, err := issuer.Issue(&models.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken for wrong secret", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	if _, err := mgr.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}
