package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const resetTokenBytes = 32

// GenerateSecureToken returns n random bytes hex encoded.
func GenerateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func GenerateResetToken() (string, error) {
	return GenerateSecureToken(resetTokenBytes)
}

// GenerateOAuthState returns the opaque state value for the Google consent redirect.
func GenerateOAuthState() (string, error) {
	return GenerateSecureToken(16)
}
