package middleware

import (
	"net/http"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader names the client-chosen key for a POST
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds client-supplied keys
const MaxIdempotencyKeyLength = 128

// Idempotency rejects a replayed POST whose Idempotency-Key already produced a
// successful response for the same tenant. Keys are recorded only after a 2xx,
// so a request that failed may be retried with the same key.
// Requests without the header pass through untouched.
//
// Store failures are logged and the request proceeds; the invoice version
// check still guards against double settlement.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		storeKey := GetTenantID(c) + ":" + c.FullPath() + ":" + key

		seen, err := store.IsProcessed(ctx, storeKey)
		if err != nil {
			log.Warn("Idempotency lookup failed", zap.Error(err))
		} else if seen {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest, "Request with this Idempotency-Key was already processed", GetRequestID(c)))
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		if _, err := store.MarkProcessed(ctx, storeKey, ttl); err != nil {
			log.Warn("Failed to record idempotency key", zap.Error(err))
		}
	}
}
