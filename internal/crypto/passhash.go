// Package crypto implements server-side password hashing and session token generation.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for stored passwords.
const DefaultCost = 10

// Hasher hashes and verifies passwords.
type Hasher interface {
	// Hash returns a salted one-way hash of plain.
	Hash(plain string) (string, error)
	// Verify reports whether plain matches hash. A mismatch is (false, nil);
	// an error means the stored hash is unusable.
	Verify(plain, hash string) (bool, error)
}

// Bcrypt is the production Hasher.
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns a Hasher with the given cost, falling back to DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{Cost: cost}
}

// Hash implements Hasher.
func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify implements Hasher. Comparison inside bcrypt is constant-time.
func (b *Bcrypt) Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// NewToken returns a 256-bit random token, hex encoded.
func NewToken() (string, error) {
	b, err := RandBytes(32)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns a stable digest of a session token so raw tokens are never stored.
func HashToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}
