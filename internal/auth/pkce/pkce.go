// Package pkce implements the Proof Key for Code Exchange parameters
// (RFC 7636) used to bind the Fitbit authorization-code exchange to the
// server that started the flow.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateCodeVerifier returns a random code verifier: 32 bytes of system
// randomness, base64url encoded without padding (43 characters, within the
// 43-128 range RFC 7636 requires).
func GenerateCodeVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CodeChallenge derives the S256 code challenge from a verifier:
// base64url(sha256(verifier)), no padding.
func CodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateState returns a random state token for CSRF/replay protection,
// 16 bytes hex encoded. Never reused across flows.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
