// Package security hashes and verifies user passwords.
package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashFailed is joined with the bcrypt error when a password cannot be hashed.
var ErrHashFailed = errors.New("hash password failed")

// PasswordHasher turns plaintext passwords into storable hashes and checks them later.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// BcryptHasher is the PasswordHasher used in production.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost; a cost outside bcrypt's range falls back to the default.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return BcryptHasher{cost: cost}
}

// Hash implements PasswordHasher.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Join(ErrHashFailed, err)
	}

	return string(hashed), nil
}

// Verify implements PasswordHasher.
func (h BcryptHasher) Verify(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
