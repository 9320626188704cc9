package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/fpm2805/ayuda-penco/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets a client mark a submission so a double click or
// a retry is not recorded twice.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// Idempotency rejects a repeated submission carrying an already seen
// Idempotency-Key with 409. Requests without the header pass through. A key
// whose request failed is released so the client can retry it.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		scoped := idempotencyScope(c) + " " + key
		first, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			// Without the store a duplicate cannot be detected; accept the request
			logger.L(ctx).Warn("Idempotency check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !first {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateSubmission, "This submission was already recorded", GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Forget(ctx, scoped); err != nil {
				logger.L(ctx).Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

// idempotencyScope names the target of a request by its route and path
// parameters. The identity parameter is normalized so every spelling of a
// beneficiary's identity shares one scope.
func idempotencyScope(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		return c.Request.Method + " " + c.Request.URL.Path
	}
	var b strings.Builder
	b.WriteString(c.Request.Method)
	b.WriteByte(' ')
	b.WriteString(route)
	for _, p := range c.Params {
		value := p.Value
		if p.Key == "key" {
			value = registry.NormalizeIdentity(value).String()
		}
		b.WriteByte(' ')
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(value)
	}
	return b.String()
}
