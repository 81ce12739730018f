// Package pkce generates Proof Key for Code Exchange pairs (RFC 7636) and the
// base64url helpers used around them.
package pkce

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// MethodS256 is the only challenge method the Identity service accepts.
	MethodS256 = "S256"

	// VerifierLength is the number of symbols in a generated code verifier.
	// RFC 7636 requires 43 to 128 characters.
	VerifierLength = 43

	// VerifierAlphabet holds the unreserved characters allowed in a verifier.
	VerifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

	// NonceAlphabet is used for nonces and state values handed to social providers.
	NonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Pair is a code verifier together with its derived challenge.
type Pair struct {
	Verifier  string
	Challenge string
	Method    string
}

// Generate returns a fresh PKCE pair. A new pair must be generated for every
// authentication attempt; a verifier is presented exactly once, together with
// the code it produced.
func Generate() (*Pair, error) {
	verifier, err := RandomString(VerifierLength, VerifierAlphabet)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}

	return &Pair{
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
		Method:    MethodS256,
	}, nil
}

// RandomString draws n symbols uniformly from alphabet using crypto/rand.
func RandomString(n int, alphabet string) (string, error) {
	if n <= 0 {
		return "", nil
	}
	if alphabet == "" {
		return "", fmt.Errorf("empty alphabet")
	}

	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}

// EncodeBase64URL encodes data as URL-safe base64 without padding.
func EncodeBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBase64URL decodes URL-safe base64. Trailing padding is optional.
func DecodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
