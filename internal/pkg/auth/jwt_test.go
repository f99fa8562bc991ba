package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhealth/schoolhealth/internal/app/models"
)

func newTestService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: exp,
		TokenIssuer:    "schoolhealth-test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService(time.Hour)
	user := &models.User{ID: 42, Email: "nurse@school.edu", RoleType: models.RoleStaff}

	token, expiresIn, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "STAFF", claims.RoleType)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService(-time.Minute)
	token, _, err := svc.GenerateAccessToken(&models.User{ID: 1, Email: "a@b.c", RoleType: models.RoleParent})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := newTestService(time.Hour).GenerateAccessToken(&models.User{ID: 1, Email: "a@b.c", RoleType: models.RoleParent})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "schoolhealth-test"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer aaa.bbb.ccc")
	require.NoError(t, err)
	assert.Equal(t, "aaa.bbb.ccc", tok)

	tok, err = ExtractBearerToken("\"aaa.bbb.ccc\"")
	require.NoError(t, err)
	assert.Equal(t, "aaa.bbb.ccc", tok)

	_, err = ExtractBearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
}
