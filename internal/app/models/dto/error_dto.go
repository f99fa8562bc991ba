package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_006"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_008"
	ErrorCodeForbidden          ErrorCode = "AUTH_009"

	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"
	ErrorCodeResourceInvalid       ErrorCode = "RES_003"
	ErrorCodeConflict              ErrorCode = "RES_004"
	ErrorCodeInvalidTransition     ErrorCode = "RES_005"

	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeBadRequest       ErrorCode = "VAL_002"

	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeDatabaseError  ErrorCode = "SRV_002"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code      ErrorCode   `json:"code" example:"RES_001"`
	Message   string      `json:"message" example:"Student not found"`
	Field     string      `json:"field,omitempty" example:"studentId"`
	Details   interface{} `json:"details,omitempty"`
	DebugInfo string      `json:"debugInfo,omitempty"`
}

// ErrorResponse is the envelope of a failed request
type ErrorResponse struct {
	StatusCode int          `json:"statusCode" example:"404"`
	Message    string       `json:"message" example:"Not Found"`
	Error      *ErrorDetail `json:"error"`
	Timestamp  time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:    code,
		Message: message,
	}
}

// WithField adds a field name to the error detail
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithDetails adds additional details to the error
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// WithDebugInfo adds debug information (development only)
func (e *ErrorDetail) WithDebugInfo(format string, args ...interface{}) *ErrorDetail {
	e.DebugInfo = fmt.Sprintf(format, args...)
	return e
}

// NewErrorResponse creates the failure envelope
func NewErrorResponse(statusCode int, message string, detail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
		Error:      detail,
		Timestamp:  time.Now(),
	}
}

// HandleValidationError turns binding errors into an ErrorDetail listing every failed field
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewErrorDetail(ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
	}

	fields := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, ErrorDetail{
			Code:    ErrorCodeValidationFailed,
			Message: formatValidationError(fe),
			Field:   lowerFirst(fe.Field()),
		})
	}

	detail := NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(fields)
	if len(fields) == 1 {
		detail.Field = fields[0].Field
	}
	return detail
}

func formatValidationError(e validator.FieldError) string {
	field := lowerFirst(e.Field())
	switch e.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "min", "gte":
		return field + " must be at least " + e.Param()
	case "max", "lte":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "datetime":
		return field + " must match the format " + e.Param()
	case "schedule_status", "delivery_status":
		return field + " is not a valid status"
	case "student_code", "phone":
		return field + " has an invalid format"
	default:
		return field + " validation failed: " + e.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
