package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Exam errors
var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrExamHasAssignments = errors.New("exam has student assignments and cannot be deleted")
	ErrStationNotFound    = errors.New("station not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrOptionNotFound     = errors.New("option not found")
)

// Student errors
var (
	ErrStudentNotFound         = errors.New("student not found")
	ErrEnrollmentAlreadyExists = errors.New("enrollment id already exists")
)

// Evaluator errors
var (
	ErrEvaluatorNotFound       = errors.New("evaluator not found")
	ErrEmailAlreadyExists      = errors.New("email already exists")
	ErrEvaluatorHasAssignments = errors.New("evaluator has active assignments and cannot be deleted")
)

// Hospital and group errors
var (
	ErrHospitalNotFound    = errors.New("hospital not found")
	ErrHospitalHasStudents = errors.New("hospital has students and cannot be deleted")
	ErrGroupNotFound       = errors.New("group not found")
)

// Assignment errors
var (
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrAssignmentAlreadyExists = errors.New("student is already assigned to this exam")
	ErrAssignmentCompleted     = errors.New("assignment has already been completed")
	ErrInvalidTransition       = errors.New("invalid assignment state transition")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with an underlying sentinel error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return NewCustomError(ErrValidationFailed, message)
}

// NewNotFoundError creates a not-found error with a message
func NewNotFoundError(message string) error {
	return NewCustomError(ErrResourceNotFound, message)
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return NewCustomError(ErrConflict, message)
}
