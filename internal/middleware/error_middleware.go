package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// HandleAPIError maps service errors to HTTP responses. Controllers call it
// for every non-nil service error so status mapping lives in one place.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	message := ""
	if errors.As(err, &custom) {
		message = custom.Message
	}

	respond := func(status int, code dto.ErrorCode, fallback string) {
		if message == "" {
			message = fallback
		}
		detail := dto.NewErrorDetail(code, message)
		if custom != nil && custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
		}
		c.JSON(status, dto.NewErrorResponse(detail))
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed")

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Account is disabled")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")

	case errors.Is(err, apperrors.ErrExamNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Exam not found")
	case errors.Is(err, apperrors.ErrStationNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Station not found")
	case errors.Is(err, apperrors.ErrQuestionNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Question not found")
	case errors.Is(err, apperrors.ErrOptionNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Option not found")
	case errors.Is(err, apperrors.ErrStudentNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found")
	case errors.Is(err, apperrors.ErrEvaluatorNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Evaluator not found")
	case errors.Is(err, apperrors.ErrHospitalNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Hospital not found")
	case errors.Is(err, apperrors.ErrGroupNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Group not found")
	case errors.Is(err, apperrors.ErrAssignmentNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Assignment not found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrEnrollmentAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Enrollment ID already exists")
	case errors.Is(err, apperrors.ErrAssignmentAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Student is already assigned to this exam")
	case errors.Is(err, apperrors.ErrAssignmentCompleted):
		respond(http.StatusConflict, dto.ErrorCodeResourceConflict, "Assignment has already been completed")
	case errors.Is(err, apperrors.ErrExamHasAssignments):
		respond(http.StatusConflict, dto.ErrorCodeResourceConflict, "Exam has student assignments and cannot be deleted")
	case errors.Is(err, apperrors.ErrEvaluatorHasAssignments):
		respond(http.StatusConflict, dto.ErrorCodeResourceConflict, "Evaluator has active assignments and cannot be deleted")
	case errors.Is(err, apperrors.ErrHospitalHasStudents):
		respond(http.StatusConflict, dto.ErrorCodeResourceConflict, "Hospital has students and cannot be deleted")
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrConflict):
		respond(http.StatusConflict, dto.ErrorCodeResourceConflict, "Conflict")
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists")

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
