package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	h, err := Password("Secret123", 4)
	require.NoError(t, err)
	assert.True(t, IsBcryptHash(h))
	assert.True(t, CheckPassword(h, "Secret123"))
	assert.False(t, CheckPassword(h, "Secret124"))
}

func TestIsBcryptHash(t *testing.T) {
	t.Parallel()

	assert.False(t, IsBcryptHash("Secret123"))
	assert.False(t, IsBcryptHash(""))
	assert.False(t, IsBcryptHash("sha256:abcdef"))
	assert.True(t, IsBcryptHash("$2a$10$abcdefghijklmnopqrstuv"))
	assert.True(t, IsBcryptHash("$2b$12$abcdefghijklmnopqrstuv"))
}

func TestRandomHex(t *testing.T) {
	t.Parallel()

	a, err := RandomHex(32)
	require.NoError(t, err)
	b, err := RandomHex(32)
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b",
		Sha256Hex("secret"))
}
