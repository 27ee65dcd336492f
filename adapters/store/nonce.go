package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const nonceBytes = 16

func newNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
