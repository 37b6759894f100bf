package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes = 16
	keyBytes  = 32
)

// Hasher derives and verifies PBKDF2-HMAC-SHA256 password hashes. The hash
// and the per-user salt are stored as separate hex columns on the user row.
type Hasher struct {
	iterations int
}

func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = 100_000
	}
	return &Hasher{iterations: iterations}
}

// Hash derives a hash for password under a fresh random salt.
func (h *Hasher) Hash(password string) (hash, salt string, err error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	salt = hex.EncodeToString(raw)
	return h.hashWithSalt(password, salt), salt, nil
}

// Verify recomputes the derivation and compares in constant time.
func (h *Hasher) Verify(password, storedHash, salt string) bool {
	computed := h.hashWithSalt(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

func (h *Hasher) hashWithSalt(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, keyBytes, sha256.New)
	return hex.EncodeToString(key)
}
