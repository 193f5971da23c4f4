package gate

import (
	"crypto/sha256"
	"encoding/base64"
)

// challenge derives the S256 PKCE code challenge from a verifier.
func challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
