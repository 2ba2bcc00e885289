package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fertigation.io/farmwatch/internal/access"
)

type contextKey string

const (
	// RequestIDHeader is the HTTP header for request tracing.
	RequestIDHeader = "X-Request-ID"

	ctxKeyRequestID contextKey = "request_id"
	ctxKeySession   contextKey = "session"
	ctxKeyClaims    contextKey = "claims"
)

// RequestID injects a unique request ID into the context and response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			id, _ := uuid.NewV7()
			rid = id.String()
		}
		c.Set(string(ctxKeyRequestID), rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), ctxKeyRequestID, rid),
		)
		c.Next()
	}
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithSession stores the caller's session in ctx.
func WithSession(ctx context.Context, s access.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFrom returns the caller's session, or the anonymous session when
// the request carried no valid token.
func SessionFrom(ctx context.Context) access.Session {
	if v, ok := ctx.Value(ctxKeySession).(access.Session); ok {
		return v
	}
	return access.Anonymous()
}

// GetUserID extracts user ID from context.
func GetUserID(ctx context.Context) string {
	return SessionFrom(ctx).UserID
}

// ClaimsFrom returns the validated token claims, if any.
func ClaimsFrom(ctx context.Context) (*JWTClaims, bool) {
	v, ok := ctx.Value(ctxKeyClaims).(*JWTClaims)
	return v, ok
}
