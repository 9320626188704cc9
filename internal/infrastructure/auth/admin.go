package auth

import (
	"crypto/subtle"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed admin login
var ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "invalid username or password")

// AdminAuthenticator checks the admin panel credential and issues tokens
type AdminAuthenticator struct {
	username     string
	passwordHash []byte
	tokens       *JWTService
}

// NewAdminAuthenticator creates an authenticator for the configured admin
func NewAdminAuthenticator(cfg config.AdminConfig, tokens *JWTService) *AdminAuthenticator {
	return &AdminAuthenticator{
		username:     cfg.Username,
		passwordHash: []byte(cfg.PasswordHash),
		tokens:       tokens,
	}
}

// Login verifies the credential and returns an admin token. Without a
// configured hash every login fails.
func (a *AdminAuthenticator) Login(username, password string) (*Token, error) {
	if len(a.passwordHash) == 0 {
		return nil, ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}
	return a.tokens.Generate(a.username, AdminPermissions)
}

// HashPassword produces a bcrypt hash for admin.password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
