package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrPasswordMismatch means the plaintext does not match the stored digest.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrCorruptDigest means the stored digest is not a readable bcrypt hash.
	// Treated as an internal fault, never a client error.
	ErrCorruptDigest = errors.New("corrupt password digest")
)

// HashPassword hashes a plaintext password with the configured cost.
// bcrypt salts internally, so two calls on the same input yield different
// digests that both verify.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
// Returns ErrPasswordMismatch on a clean mismatch and ErrCorruptDigest when
// the stored value cannot be parsed as a bcrypt digest.
func ComparePassword(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return errors.Join(ErrCorruptDigest, err)
	}
}
