package auth

import (
	"testing"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-with-at-least-32-characters",
		Expiration: time.Hour,
		Issuer:     "ayuda-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.Generate("admin", AdminPermissions)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	claims, err := svc.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.HasPermission(PermissionReportsRead))
	assert.True(t, claims.HasPermission(PermissionImportWrite))
	assert.False(t, claims.HasPermission("beneficiaries:delete"))
}

func TestJWTService_Validate(t *testing.T) {
	svc := newTestJWTService()

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.Generate("admin", nil)
		require.NoError(t, err)

		later := *svc
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.Validate(token.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-with-32-characters!", Expiration: time.Hour, Issuer: "ayuda-test"})
		token, err := other.Generate("admin", nil)
		require.NoError(t, err)

		_, err = svc.Validate(token.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewJWTService_RandomSecret(t *testing.T) {
	a := NewJWTService(config.JWTConfig{Expiration: time.Hour, Issuer: "x"})
	b := NewJWTService(config.JWTConfig{Expiration: time.Hour, Issuer: "x"})

	token, err := a.Generate("admin", nil)
	require.NoError(t, err)
	_, err = b.Validate(token.AccessToken)
	assert.Error(t, err)
}

func TestAdminAuthenticator_Login(t *testing.T) {
	hash, err := HashPassword("clave-segura")
	require.NoError(t, err)

	authn := NewAdminAuthenticator(config.AdminConfig{Username: "admin", PasswordHash: hash}, newTestJWTService())

	t.Run("valid credential", func(t *testing.T) {
		token, err := authn.Login("admin", "clave-segura")
		require.NoError(t, err)
		assert.NotEmpty(t, token.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := authn.Login("admin", "penco")
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("wrong username", func(t *testing.T) {
		_, err := authn.Login("root", "clave-segura")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("no hash configured", func(t *testing.T) {
		empty := NewAdminAuthenticator(config.AdminConfig{Username: "admin"}, newTestJWTService())
		_, err := empty.Login("admin", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
