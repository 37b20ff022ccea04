package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
		_, err = GenerateToken(-8)
		require.Error(t, err)
	})

	t.Run("produces url-safe tokens of the right length", func(t *testing.T) {
		for _, size := range []int{TokenSize128, TokenSize256} {
			token, err := GenerateToken(size)
			require.NoError(t, err)

			raw, err := base64.RawURLEncoding.DecodeString(token)
			require.NoError(t, err)
			require.Len(t, raw, size)
		}
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]bool, 100)
		for range 100 {
			token, err := GenerateToken(TokenSize128)
			require.NoError(t, err)
			require.NotContains(t, seen, token)
			seen[token] = true
		}
	})
}

func TestFingerprintToken(t *testing.T) {
	fp1 := FingerprintToken("some-token")
	fp2 := FingerprintToken("some-token")
	fp3 := FingerprintToken("other-token")

	require.Equal(t, fp1, fp2, "fingerprints must be deterministic")
	require.NotEqual(t, fp1, fp3)
	require.Len(t, fp1, 43, "sha-256 in raw base64url is 43 chars")
}
