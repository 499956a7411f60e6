package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)

	token, err := auth.GenerateToken("report-bot")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "report-bot", claims.Subject)
	assert.Equal(t, TokenTypeAnalytics, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthServiceRejectsForeignSecret(t *testing.T) {
	token, err := NewAuthService("other", time.Hour).GenerateToken("x")
	require.NoError(t, err)

	_, err = NewAuthService("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestAuthServiceRejectsExpired(t *testing.T) {
	auth := NewAuthService("secret", -time.Minute)
	token, err := auth.GenerateToken("x")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAuthServiceRejectsGarbage(t *testing.T) {
	_, err := NewAuthService("secret", time.Hour).ValidateToken("not.a.token")
	assert.Error(t, err)
}
