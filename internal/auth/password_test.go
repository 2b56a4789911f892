package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_VerifiesOriginal(t *testing.T) {
	digest, err := HashPassword("abc123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "abc123" {
		t.Fatalf("digest equals plaintext")
	}
	if err := ComparePassword(digest, "abc123"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	first, err := HashPassword("abc123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("abc123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct digests for the same input")
	}
	if err := ComparePassword(first, "abc123"); err != nil {
		t.Fatalf("first digest should verify: %v", err)
	}
	if err := ComparePassword(second, "abc123"); err != nil {
		t.Fatalf("second digest should verify: %v", err)
	}
}

func TestComparePassword_Mismatch(t *testing.T) {
	digest, err := HashPassword("abc123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(digest, "xyz789"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestComparePassword_CorruptDigest(t *testing.T) {
	if err := ComparePassword("not-a-bcrypt-digest", "abc123"); !errors.Is(err, ErrCorruptDigest) {
		t.Fatalf("expected ErrCorruptDigest, got %v", err)
	}
}
