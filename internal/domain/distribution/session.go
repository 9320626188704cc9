package distribution

import (
	"strings"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
)

// Session identifies where and by whom deliveries are being handed out.
// It is passed explicitly into every write.
type Session struct {
	Center  string
	Officer string
}

// NewSession trims the values and fills blanks from fallback
func NewSession(center, officer string, fallback Session) Session {
	s := Session{Center: strings.TrimSpace(center), Officer: strings.TrimSpace(officer)}
	if s.Center == "" {
		s.Center = fallback.Center
	}
	if s.Officer == "" {
		s.Officer = fallback.Officer
	}
	return s
}

// Validate requires both center and officer
func (s Session) Validate() error {
	if strings.TrimSpace(s.Center) == "" {
		return shared.NewValidationError("distribution center is required")
	}
	if strings.TrimSpace(s.Officer) == "" {
		return shared.NewValidationError("responsible officer is required")
	}
	return nil
}
