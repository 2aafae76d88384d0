package utils

import (
	"testing"

	"filevault/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenPairRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()

	pair, err := GenerateTokenPair(userID, "alice@example.com", "alice", "user")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)

	refreshClaims, err := ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, refreshClaims.UserID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	userID := primitive.NewObjectID()

	pair, err := GenerateTokenPair(userID, "bob@example.com", "bob", "user")
	require.NoError(t, err)

	// A refresh token must not pass access validation and vice versa.
	_, err = ValidateToken(pair.RefreshToken)
	assert.Error(t, err)

	_, err = ValidateRefreshToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestInitJWTRewiresSecrets(t *testing.T) {
	prevAccess, prevRefresh := jwtSecret, jwtRefreshSecret
	defer func() {
		jwtSecret, jwtRefreshSecret = prevAccess, prevRefresh
	}()

	userID := primitive.NewObjectID()
	pair, err := GenerateTokenPair(userID, "carol@example.com", "carol", "user")
	require.NoError(t, err)

	InitJWT(&config.Config{
		JWTSecret:        "rotated-access-secret",
		JWTRefreshSecret: "rotated-refresh-secret",
	})

	// Tokens signed before the rotation no longer validate.
	_, err = ValidateToken(pair.AccessToken)
	assert.Error(t, err)
	_, err = ValidateRefreshToken(pair.RefreshToken)
	assert.Error(t, err)

	// Tokens signed afterwards carry the configured secrets.
	rotated, err := GenerateTokenPair(userID, "carol@example.com", "carol", "user")
	require.NoError(t, err)
	claims, err := ValidateToken(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-Passw0rd", hash)

	assert.True(t, CheckPasswordHash("s3cret-Passw0rd", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
