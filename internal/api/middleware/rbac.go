package middleware

import (
	"github.com/gin-gonic/gin"

	"fertigation.io/farmwatch/internal/access"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
)

// RequirePermission returns middleware that checks the caller's role against
// the access policy. The policy is evaluated on every request from the role
// claim, so a role change takes effect at the next login.
func RequirePermission(action access.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := SessionFrom(c.Request.Context())
		if !s.Authenticated {
			AbortWithAppError(c, apperrors.Unauthorized(apperrors.CodeUnauthorized, "not authenticated"))
			return
		}
		if !access.SessionAllows(s, action) {
			AbortWithAppError(c, apperrors.Forbidden(apperrors.CodeForbidden, "insufficient permissions").
				WithParams(map[string]interface{}{"action": string(action), "role": string(s.Role)}))
			return
		}
		c.Next()
	}
}
