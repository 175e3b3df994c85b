package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewToken returns n random bytes encoded as unpadded URL-safe base64,
// suitable for headers and cookies.
func NewToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
