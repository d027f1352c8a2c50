package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	Init("unit-test-secret-unit-test-secret", 5, 1)

	token, err := GenerateAccessToken("U100")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "U100", claims.UserID)
	assert.Equal(t, SubjectAccessToken, claims.Subject)
	assert.Empty(t, claims.TokenID)
}

func TestRefreshTokenCarriesTokenID(t *testing.T) {
	Init("unit-test-secret-unit-test-secret", 5, 1)

	token, tokenID, err := GenerateRefreshToken("U200")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, SubjectRefreshToken, claims.Subject)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	Init("first-secret-first-secret-first-secret", 5, 1)
	token, err := GenerateAccessToken("U300")
	require.NoError(t, err)

	Init("second-secret-second-secret-second", 5, 1)
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	Init("unit-test-secret-unit-test-secret", -1, 1)
	token, err := GenerateAccessToken("U400")
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}
