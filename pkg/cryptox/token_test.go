package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{TokenSize128, TokenSize256, 24} {
		a, err := GenerateToken(size)
		require.NoError(t, err)
		b, err := GenerateToken(size)
		require.NoError(t, err)

		require.NotEmpty(t, a)
		require.NotEqual(t, a, b, "tokens should be unique")
	}

	token, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, token, 43)
}

func TestGenerateTokenRejectsBadSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	a := FingerprintToken("invite-token")
	require.Equal(t, a, FingerprintToken("invite-token"))
	require.NotEqual(t, a, FingerprintToken("invite-token2"))
	require.Len(t, a, 43)
}

func TestEqualSecrets(t *testing.T) {
	require.True(t, EqualSecrets("s3cret", "s3cret"))
	require.False(t, EqualSecrets("s3cret", "s3cret "))
	require.False(t, EqualSecrets("", "x"))
}
