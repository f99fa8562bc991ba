package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduhealth/schoolhealth/internal/app/models/dto"
	"github.com/eduhealth/schoolhealth/internal/pkg/apperrors"
	"github.com/eduhealth/schoolhealth/internal/pkg/logger"
)

type errorMapping struct {
	errs   []error
	status int
	code   dto.ErrorCode
}

// Checked in order; the first matching sentinel decides status and message.
var errorMappings = []errorMapping{
	{
		errs:   []error{apperrors.ErrInvalidTransition},
		status: http.StatusConflict,
		code:   dto.ErrorCodeInvalidTransition,
	},
	{
		errs: []error{
			apperrors.ErrUserNotFound, apperrors.ErrParentNotFound, apperrors.ErrStaffNotFound,
			apperrors.ErrClassNotFound, apperrors.ErrStudentNotFound,
			apperrors.ErrHealthRecordNotFound, apperrors.ErrTreatmentNotFound, apperrors.ErrMedicineNotFound,
			apperrors.ErrDeliveryNotFound, apperrors.ErrCampaignNotFound, apperrors.ErrScheduleNotFound,
			apperrors.ErrNotificationNotFound, apperrors.ErrFeedbackNotFound,
			apperrors.ErrResourceNotFound,
		},
		status: http.StatusNotFound,
		code:   dto.ErrorCodeResourceNotFound,
	},
	{
		errs: []error{
			apperrors.ErrEmailAlreadyExists, apperrors.ErrClassAlreadyExists, apperrors.ErrStudentCodeAlreadyExists,
			apperrors.ErrHealthRecordAlreadyExists, apperrors.ErrMedicineAlreadyExists,
			apperrors.ErrResourceAlreadyExists,
		},
		status: http.StatusConflict,
		code:   dto.ErrorCodeResourceAlreadyExists,
	},
	{
		errs:   []error{apperrors.ErrConflict},
		status: http.StatusConflict,
		code:   dto.ErrorCodeConflict,
	},
	{
		errs:   []error{apperrors.ErrValidationFailed, apperrors.ErrNoTargetStudents, apperrors.ErrReferenceNotFound},
		status: http.StatusBadRequest,
		code:   dto.ErrorCodeValidationFailed,
	},
	{
		errs:   []error{apperrors.ErrBadRequest},
		status: http.StatusBadRequest,
		code:   dto.ErrorCodeBadRequest,
	},
	{
		errs:   []error{apperrors.ErrInvalidCredentials, apperrors.ErrAccountDisabled},
		status: http.StatusUnauthorized,
		code:   dto.ErrorCodeInvalidCredentials,
	},
	{
		errs:   []error{apperrors.ErrTokenExpired},
		status: http.StatusUnauthorized,
		code:   dto.ErrorCodeExpiredToken,
	},
	{
		errs:   []error{apperrors.ErrTokenInvalid, apperrors.ErrInvalidFormat},
		status: http.StatusUnauthorized,
		code:   dto.ErrorCodeInvalidToken,
	},
	{
		errs:   []error{apperrors.ErrPermissionDenied},
		status: http.StatusForbidden,
		code:   dto.ErrorCodeForbidden,
	},
}

// HandleAPIError maps service errors onto the response envelope
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		for _, target := range m.errs {
			if errors.Is(err, target) {
				RespondWithError(c, m.status, dto.NewErrorDetail(m.code, errorMessage(err, target)))
				return
			}
		}
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled error")
	RespondWithError(c, http.StatusInternalServerError,
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"))
}

// RespondWithError aborts the request with the error envelope
func RespondWithError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.APIResponse{
		StatusCode: status,
		Message:    http.StatusText(status),
		Error:      detail,
		Timestamp:  time.Now(),
	})
}

// errorMessage prefers a CustomError message, then the matched sentinel's text
func errorMessage(err, matched error) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	msg := matched.Error()
	return strings.ToUpper(msg[:1]) + msg[1:]
}
