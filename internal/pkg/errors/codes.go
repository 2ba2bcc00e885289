package errors

import "net/http"

// Error codes are stable, machine-readable identifiers.
// Backend logs are always in English; clients translate codes.

// Validation error codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidRequest   = "INVALID_REQUEST"
)

// Not-found error codes.
const (
	CodeFarmNotFound    = "FARM_NOT_FOUND"
	CodeSensorNotFound  = "SENSOR_NOT_FOUND"
	CodeAlertNotFound   = "ALERT_NOT_FOUND"
	CodeProfileNotFound = "PROFILE_NOT_FOUND"
	CodeStreamDisabled  = "STREAM_DISABLED"
)

// Store write/read error codes.
const (
	CodeReadingWriteFailed  = "READING_WRITE_FAILED"
	CodeAlertWriteFailed    = "ALERT_WRITE_FAILED"
	CodeFarmWriteFailed     = "FARM_WRITE_FAILED"
	CodeScheduleWriteFailed = "SCHEDULE_WRITE_FAILED"
	CodeReportWriteFailed   = "REPORT_WRITE_FAILED"
	CodeContactWriteFailed  = "CONTACT_WRITE_FAILED"
	CodeProfileWriteFailed  = "PROFILE_WRITE_FAILED"
	CodeReadFailed          = "READ_FAILED"
	CodeExportFailed        = "EXPORT_FAILED"
)

// Auth error codes.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailTaken         = "EMAIL_ALREADY_REGISTERED"
	CodeTokenIssueFailed   = "TOKEN_ISSUE_FAILED"
	CodeLogoutFailed       = "LOGOUT_FAILED"
)

// Convenience constructors using predefined codes.

// Validation creates a 400 error carrying field-level details.
func Validation(fields ...FieldError) *AppError {
	return BadRequest(CodeValidationFailed, "request validation failed").WithFieldErrors(fields)
}

// WriteFailed wraps a rejected store write.
func WriteFailed(err error, code, what string) *AppError {
	return Wrap(err, code, "failed to write "+what, http.StatusInternalServerError)
}

// ReadFailed wraps a rejected store read.
func ReadFailed(err error, what string) *AppError {
	return Wrap(err, CodeReadFailed, "failed to read "+what, http.StatusInternalServerError)
}

// NotFoundf creates a 404 for a missing row of the named kind.
func NotFoundf(code, kind string, id interface{}) *AppError {
	return NotFound(code, kind+" not found").WithParams(map[string]interface{}{"id": id})
}
