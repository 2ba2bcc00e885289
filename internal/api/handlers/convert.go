package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
)

// maxListLimit matches the Limit parameter's maximum in the API document.
const maxListLimit = 500

// queryParam binds an optional form-style query parameter. dest is a
// pointer to a pointer; it stays nil when the parameter is absent.
func queryParam(c *gin.Context, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), dest); err != nil {
		fail(c, apperrors.Validation(apperrors.FieldError{Field: name, Code: "format", Message: err.Error()}))
		return false
	}
	return true
}

// limitParam reads ?limit, defaulting to repository.DefaultListLimit.
func limitParam(c *gin.Context) (int, bool) {
	var limit *int
	if !queryParam(c, "limit", &limit) {
		return 0, false
	}
	if limit == nil {
		return repository.DefaultListLimit, true
	}
	if *limit < 1 || *limit > maxListLimit {
		fail(c, apperrors.Validation(apperrors.FieldError{Field: "limit", Code: "range"}))
		return 0, false
	}
	return *limit, true
}

// idParam reads a positive int64 path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apperrors.Validation(apperrors.FieldError{Field: name, Code: "format"}))
		return 0, false
	}
	return id, true
}
