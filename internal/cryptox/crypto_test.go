package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("Secret123")
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", h)

	require.NoError(t, CheckPassword(h, "Secret123"))
	require.ErrorIs(t, CheckPassword(h, "secret123"), ErrPasswordMismatch)

	h2, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "salted")
}

func TestCheckPassword_BadHash(t *testing.T) {
	err := CheckPassword("not-a-bcrypt-hash", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("abc"))
	assert.True(t, TokenMatches(h, "abc"))
	assert.False(t, TokenMatches(h, "abd"))
}
