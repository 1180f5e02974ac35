package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateAPIToken creates a random API token. The plaintext is shown to the
// user once; only the hash is stored.
func GenerateAPIToken() (plaintext string, hash string, err error) {
	plaintext, err = randomHex(32)
	if err != nil {
		return "", "", err
	}
	return plaintext, HashToken(plaintext), nil
}

// HashToken returns the SHA-256 hex digest of an API token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// GenerateSessionSecret creates a random 32-byte secret for CSRF token signing.
func GenerateSessionSecret() (string, error) {
	return randomHex(32)
}

// SecretKey turns a configured secret into the 32-byte key gorilla/csrf
// expects. Hex secrets are decoded, anything else is hashed.
func SecretKey(secret string) []byte {
	if key, err := hex.DecodeString(secret); err == nil && len(key) == 32 {
		return key
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
