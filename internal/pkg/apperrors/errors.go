package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
	ErrReferenceNotFound     = errors.New("referenced resource does not exist")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrInvalidFormat    = errors.New("invalid token format")
)

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// School errors
var (
	ErrClassNotFound            = errors.New("class not found")
	ErrClassAlreadyExists       = errors.New("class with this name already exists")
	ErrStudentNotFound          = errors.New("student not found")
	ErrStudentCodeAlreadyExists = errors.New("student code already exists")
	ErrParentNotFound           = errors.New("parent not found")
	ErrStaffNotFound            = errors.New("staff member not found")
)

// Health errors
var (
	ErrHealthRecordNotFound      = errors.New("health record not found")
	ErrHealthRecordAlreadyExists = errors.New("student already has a health record")
	ErrTreatmentNotFound         = errors.New("treatment history entry not found")
	ErrMedicineNotFound          = errors.New("medicine not found")
	ErrMedicineAlreadyExists     = errors.New("medicine with this name already exists")
	ErrDeliveryNotFound          = errors.New("medicine delivery not found")
)

// Campaign errors
var (
	ErrCampaignNotFound  = errors.New("campaign event not found")
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrNoTargetStudents  = errors.New("campaign target matched no students")
)

// Notification and feedback errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrFeedbackNotFound     = errors.New("feedback not found")
)

// NewResourceNotFoundError wraps ErrResourceNotFound with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewConflictError wraps ErrConflict with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError wraps ErrPermissionDenied with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewBadRequestError wraps ErrBadRequest with a message
func NewBadRequestError(message string) error {
	return &CustomError{Err: ErrBadRequest, Message: message}
}

// NewValidationError wraps ErrValidationFailed with a message
func NewValidationError(message string) error {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// Is reports whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// CustomError carries a user-facing message on top of a sentinel error
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
