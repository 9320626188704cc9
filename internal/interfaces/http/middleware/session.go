package middleware

import (
	"net/url"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// Session headers. Values may be percent-encoded to carry accented names.
const (
	CenterHeader  = "X-Distribution-Center"
	OfficerHeader = "X-Officer"
	sessionKey    = "distribution_session"
)

// Session resolves the operator session of the request from its headers,
// filling blanks from fallback, and tags the request logger with it.
func Session(fallback distribution.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := distribution.NewSession(headerValue(c, CenterHeader), headerValue(c, OfficerHeader), fallback)
		c.Set(sessionKey, s)
		c.Request = c.Request.WithContext(logger.WithSession(c.Request.Context(), s.Center, s.Officer))
		c.Next()
	}
}

func headerValue(c *gin.Context, name string) string {
	raw := c.GetHeader(name)
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// GetSession returns the session resolved by Session
func GetSession(c *gin.Context) distribution.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(distribution.Session); ok {
			return s
		}
	}
	return distribution.Session{}
}
