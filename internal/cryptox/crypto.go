// Package cryptox groups the hashing primitives of the auth core.
//
// Two deliberately different algorithms live here:
//   - passwords use bcrypt, a slow salted hash, so that verification cost is
//     asymmetric to brute force;
//   - refresh tokens use plain SHA-256, a fast deterministic digest, because
//     the tokens already carry signer entropy and the session store needs a
//     cheap indexable lookup key.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt digest of the given password.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether password matches the stored bcrypt digest.
// A malformed digest counts as a mismatch, never an error to the caller.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// HashToken returns the base64-encoded SHA-256 digest of a raw token string.
// Only this digest is ever persisted; the raw token leaves the process once,
// at issuance.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// MakeRandHexString returns a hex string built from size random bytes.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
