// Package middleware provides HTTP middleware for farmwatch.
//
// Import Path: fertigation.io/farmwatch/internal/api/middleware
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/pkg/logger"
)

// ErrorHandler is a Gin middleware that provides centralized error handling.
// It captures errors added via c.Error() and returns a consistent JSON response.
// Collaborator errors wrapped in an AppError are logged here and nowhere else.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.ForRequest(GetRequestID(c.Request.Context()))

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			fields := []zap.Field{
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.Int("status", appErr.HTTPStatus),
				zap.String("path", c.FullPath()),
			}
			if appErr.Err != nil {
				fields = append(fields, zap.Error(appErr.Err))
			}
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				log.Error("Request failed", fields...)
			} else {
				log.Warn("Request error", fields...)
			}
			c.JSON(appErr.HTTPStatus, errorBody(appErr))
			return
		}

		log.Error("Unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "An internal error occurred",
		})
	}
}

// AbortWithAppError stops the chain and writes err the way ErrorHandler does.
func AbortWithAppError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, errorBody(err))
}

func errorBody(err *apperrors.AppError) gin.H {
	body := gin.H{
		"code":    err.Code,
		"message": err.Message,
	}
	if len(err.FieldErrors) > 0 {
		body["field_errors"] = err.FieldErrors
	}
	if len(err.Params) > 0 {
		body["params"] = err.Params
	}
	return body
}
