package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-chat/intent-api/internal/models"
	"github.com/commune-chat/intent-api/pkg/config"
	appErrors "github.com/commune-chat/intent-api/pkg/errors"
)

func signToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenAcceptsValidToken(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"}, nil)

	signed := signToken(t, "test-secret", models.JWTClaims{
		UserID:      "user-1",
		CommunityID: "comm-1",
		Role:        models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "comm-1", claims.CommunityID)
	assert.True(t, claims.Role.IsAdmin())
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"}, nil)

	signed := signToken(t, "test-secret", models.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"}, nil)

	signed := signToken(t, "other-secret", models.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsMissingUserID(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"}, nil)

	signed := signToken(t, "test-secret", models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
