package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenService = NewService(
	"test-signing-key",
	"test-issuer",
	time.Hour,
)

func Test_Issue(t *testing.T) {
	signed, err := tokenService.Issue("ada@x.com", []string{"ROLE_USER"})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := tokenService.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", claims.Subject)
	assert.Equal(t, []string{"ROLE_USER"}, claims.Roles)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_Verify_InvalidToken(t *testing.T) {
	_, err := tokenService.Verify("invalid-token-string")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func Test_Verify_ExpiredToken(t *testing.T) {
	expired := NewService("test-signing-key", "test-issuer", -time.Hour)

	signed, err := expired.Issue("ada@x.com", []string{"ROLE_USER"})
	require.NoError(t, err)

	_, err = tokenService.Verify(signed)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func Test_Verify_WrongKey(t *testing.T) {
	other := NewService("other-signing-key", "test-issuer", time.Hour)

	signed, err := other.Issue("ada@x.com", []string{"ROLE_USER"})
	require.NoError(t, err)

	_, err = tokenService.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}
