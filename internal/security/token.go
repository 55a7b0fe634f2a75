package security

import (
	"crypto/rand"
	"encoding/hex"
)

// NewResetToken returns a 64-character hex token with 256 bits of entropy.
func NewResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
