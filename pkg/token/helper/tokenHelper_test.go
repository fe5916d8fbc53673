package helper

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/suara-kampus/band-manager/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate private key")
	user := &model.User{
		ID:                123,
		Email:             "email",
		OrganizationLevel: model.LevelTalent,
	}

	token, err := GenerateAccessToken(user, key, 12)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestValidateAccessToken(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate private key")
	user := &model.User{
		ID:                123,
		Email:             "email",
		OrganizationLevel: model.LevelPengurus,
	}

	token, err := GenerateAccessToken(user, privateKey, 12)
	assert.NoError(t, err)

	parsed, err := ValidateAccessToken(token, &privateKey.PublicKey)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, parsed.ID)
	assert.Equal(t, user.Email, parsed.Email)
	assert.Equal(t, model.LevelPengurus, parsed.OrganizationLevel)
}

func TestValidateAccessToken_WrongKey(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token, err := GenerateAccessToken(&model.User{ID: 1}, privateKey, 12)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, &otherKey.PublicKey)
	assert.Error(t, err)
}

func TestGenerateAndValidateRefreshToken(t *testing.T) {
	user := &model.User{ID: 42}
	secret := "some-secret"

	refreshToken, err := GenerateRefreshToken(user, secret, 3600)
	require.NoError(t, err)
	require.NotEmpty(t, refreshToken.SignedString)
	require.NotEmpty(t, refreshToken.TokenId)

	claims, err := ValidateRefreshToken(refreshToken.SignedString, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserId)
	assert.Equal(t, refreshToken.TokenId, claims.ID)
	assert.Greater(t, claims.ExpiresIn, time.Duration(0))
}

func TestValidateRefreshToken_WrongSecret(t *testing.T) {
	refreshToken, err := GenerateRefreshToken(&model.User{ID: 42}, "secret", 3600)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(refreshToken.SignedString, "other-secret")
	assert.Error(t, err)
}
