package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/infrastructure/auth"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
	"github.com/fpm2805/ayuda-penco/internal/interfaces/http/dto"
	"github.com/fpm2805/ayuda-penco/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Login(t *testing.T) {
	hash, err := auth.HashPassword("clave-segura-123")
	require.NoError(t, err)

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-32-characters-long",
		Expiration: time.Hour,
		Issuer:     "ayuda-penco-test",
	})
	h := NewAuthHandler(auth.NewAdminAuthenticator(config.AdminConfig{Username: "admin", PasswordHash: hash}, tokens))

	r := gin.New()
	r.POST("/auth/login", h.Login)

	t.Run("valid credential", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodPost, "/auth/login",
			LoginRequest{Username: "admin", Password: "clave-segura-123"}, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := testutil.DecodeData[TokenResponse](t, w)
		assert.Equal(t, "Bearer", resp.TokenType)

		claims, err := tokens.Validate(resp.AccessToken)
		require.NoError(t, err)
		assert.True(t, claims.HasPermission(auth.PermissionReportsRead))
		assert.True(t, claims.HasPermission(auth.PermissionImportWrite))
	})

	t.Run("wrong password", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodPost, "/auth/login",
			LoginRequest{Username: "admin", Password: "otra-clave"}, nil)
		testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := testutil.PerformRequest(t, r, http.MethodPost, "/auth/login", LoginRequest{Username: "admin"}, nil)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})
}
