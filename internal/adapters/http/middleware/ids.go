// Package middleware provides the gin middleware chain of the service.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quoteboard/internal/platform/logging"
)

const (
	HeaderRequestID     = "X-Request-ID"
	ContextKeyRequestID = "request_id"

	// HeaderCorrelationID spans every request of one user transaction,
	// unlike the per-request X-Request-ID.
	HeaderCorrelationID     = "X-Correlation-ID"
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength bounds IDs accepted from inbound headers. Longer values are
// replaced rather than echoed back.
const maxIDLength = 128

type ctxKey string

const (
	requestIDKey     ctxKey = "request_id"
	correlationIDKey ctxKey = "correlation_id"
)

// idHeader describes one propagated identifier.
type idHeader struct {
	header string
	ginKey string
	ctxKey ctxKey
	// logAttr attaches the ID to the request-scoped logger.
	logAttr func(context.Context, string) context.Context
}

var (
	requestIDHeader     = idHeader{HeaderRequestID, ContextKeyRequestID, requestIDKey, logging.WithRequestID}
	correlationIDHeader = idHeader{HeaderCorrelationID, ContextKeyCorrelationID, correlationIDKey, logging.WithCorrelationID}
)

// RequestID reuses the caller's X-Request-ID or generates a UUID. The ID is
// echoed in the response, attached to the context logger and forwarded to
// the quote upstream by the outbound client.
func RequestID() gin.HandlerFunc {
	return requestIDHeader.middleware()
}

// CorrelationID propagates the caller's correlation ID, or starts a new one
// when the request is the origin of the transaction.
func CorrelationID() gin.HandlerFunc {
	return correlationIDHeader.middleware()
}

func (h idHeader) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(h.header)
		if id == "" || len(id) > maxIDLength {
			id = uuid.NewString()
		}

		c.Set(h.ginKey, id)
		c.Header(h.header, id)

		ctx := context.WithValue(c.Request.Context(), h.ctxKey, id)
		c.Request = c.Request.WithContext(h.logAttr(ctx, id))

		c.Next()
	}
}

// GetRequestID returns the request ID set on c, or "".
func GetRequestID(c *gin.Context) string {
	return ginString(c, ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID set on c, or "".
func GetCorrelationID(c *gin.Context) string {
	return ginString(c, ContextKeyCorrelationID)
}

// RequestIDFromContext returns the request ID stored by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return ctxString(ctx, requestIDKey)
}

// CorrelationIDFromContext returns the correlation ID stored by CorrelationID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return ctxString(ctx, correlationIDKey)
}

// ContextWithRequestID stores id as the request ID, for callers outside a
// gin request such as the CLI and tests.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithCorrelationID stores id as the correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func ginString(c *gin.Context, key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)

	return s
}

func ctxString(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}

	s, _ := ctx.Value(key).(string)

	return s
}
