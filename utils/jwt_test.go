package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("abc", "secret", time.Hour)
	require.NoError(t, err)

	sessionID, err := ValidateSessionToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", sessionID)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("abc", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, "other")
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := GenerateSessionToken("abc", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSessionTokenWithoutSessionID(t *testing.T) {
	token, err := GenerateSessionToken("", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, "secret")
	assert.Error(t, err)
}
