package security

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPasswordHashAndCheck(t *testing.T) {
	hashed, err := HashPassword("hunter2hunter2", 4) // min cost keeps the test fast
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("hunter2hunter2", hashed) {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword("wrong", hashed) {
		t.Fatalf("wrong password accepted")
	}
}

func TestTokenIssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-signing-key", time.Hour)
	userID := uuid.New()

	token, err := svc.Issue(userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != userID {
		t.Fatalf("user id mismatch: %s vs %s", got, userID)
	}
}

func TestTokenRejections(t *testing.T) {
	svc := NewTokenService("test-signing-key", time.Hour)
	other := NewTokenService("other-signing-key", time.Hour)

	token, err := other.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature: expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: expected ErrInvalidToken, got %v", err)
	}

	expired := NewTokenService("test-signing-key", -time.Minute)
	token, err = expired.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: expected ErrInvalidToken, got %v", err)
	}
}
