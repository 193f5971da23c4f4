package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Reader is the entropy source. Tests swap it to simulate failures.
var Reader io.Reader = rand.Reader

// RandomString returns n random bytes encoded as unpadded base64url.
func RandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return "", fmt.Errorf("random: read %d bytes: %w", n, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
