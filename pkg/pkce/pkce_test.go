package pkce

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGenerate(t *testing.T) {
	pair, err := Generate()
	require.NoError(t, err)

	assert.Len(t, pair.Verifier, VerifierLength)
	assert.Equal(t, MethodS256, pair.Method)

	for _, r := range pair.Verifier {
		assert.True(t, strings.ContainsRune(VerifierAlphabet, r), "unexpected verifier symbol %q", r)
	}

	hash := sha256.Sum256([]byte(pair.Verifier))
	assert.Equal(t, EncodeBase64URL(hash[:]), pair.Challenge)
	assert.Equal(t, oauth2.S256ChallengeFromVerifier(pair.Verifier), pair.Challenge)
	assert.NotContains(t, pair.Challenge, "=")
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		pair, err := Generate()
		require.NoError(t, err)
		if seen[pair.Verifier] {
			t.Fatal("Generated duplicate verifier")
		}
		seen[pair.Verifier] = true
	}
}

func TestRandomString(t *testing.T) {
	s, err := RandomString(16, NonceAlphabet)
	require.NoError(t, err)
	assert.Len(t, s, 16)

	empty, err := RandomString(0, NonceAlphabet)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = RandomString(4, "")
	assert.Error(t, err)
}

func TestBase64URLRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0xfb, 0xff},
		{0xfb, 0xff, 0xfe},
		[]byte("hello, lobby"),
		make([]byte, 255),
	}
	for i := range inputs[len(inputs)-1] {
		inputs[len(inputs)-1][i] = byte(i)
	}

	for _, in := range inputs {
		encoded := EncodeBase64URL(in)
		assert.NotContains(t, encoded, "=")
		assert.NotContains(t, encoded, "+")
		assert.NotContains(t, encoded, "/")

		decoded, err := DecodeBase64URL(encoded)
		require.NoError(t, err)
		assert.Equal(t, len(in), len(decoded))
		if len(in) > 0 {
			assert.Equal(t, in, decoded)
		}
	}
}

func TestDecodeBase64URL_AcceptsPadding(t *testing.T) {
	decoded, err := DecodeBase64URL("aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), decoded)
}
