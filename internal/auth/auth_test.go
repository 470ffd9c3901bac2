package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("my-password-123")
	require.NoError(t, err)
	assert.NotEqual(t, "my-password-123", hash)

	assert.True(t, CheckPasswordHash("my-password-123", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
}

func TestTokenRoundtrip(t *testing.T) {
	InitJWT("test-secret-key", 60)

	token, err := GenerateToken("user-42", "learner")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "learner", claims.Role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	InitJWT("secret-one", 60)
	token, err := GenerateToken("user-42", "learner")
	require.NoError(t, err)

	InitJWT("secret-two", 60)
	_, err = ParseToken(token)
	assert.Error(t, err, "токен с чужой подписью не должен проходить")
}

func TestExpiredToken(t *testing.T) {
	InitJWT("test-secret-key", -1)
	token, err := GenerateToken("user-42", "learner")
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err, "просроченный токен не должен проходить")
}
