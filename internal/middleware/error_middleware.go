package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/logger"
)

type errorMapping struct {
	err     error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first sentinel matched by errors.Is wins.
var errorMappings = []errorMapping{
	// auth
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrEmailNotVerified, http.StatusForbidden, dto.ErrorCodeEmailNotVerified, "Email not verified"},
	{apperrors.ErrInvalidEmailToken, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired verification token"},
	{apperrors.ErrInvalidResetToken, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired password reset token"},
	{apperrors.ErrEmailAlreadyVerified, http.StatusConflict, dto.ErrorCodeConflict, "Email already verified"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrStudentProfileIncomplete, http.StatusForbidden, dto.ErrorCodeForbidden, "No student profile is linked to this account"},

	// not found
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrCompanyNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Company not found"},
	{apperrors.ErrJobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Job not found"},
	{apperrors.ErrApplicationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Application not found"},
	{apperrors.ErrCertificateNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Certificate not found"},
	{apperrors.ErrInterviewNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Interview not found"},
	{apperrors.ErrNotificationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Notification not found"},

	// conflicts
	{apperrors.ErrRollNumberAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Roll number already exists"},
	{apperrors.ErrCompanyAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Company already exists"},
	{apperrors.ErrCompanyHasJobs, http.StatusConflict, dto.ErrorCodeConflict, "Company has job postings"},
	{apperrors.ErrJobHasApplications, http.StatusConflict, dto.ErrorCodeConflict, "Job has applications"},
	{apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Already applied to this job"},
	{apperrors.ErrStudentAlreadyPlaced, http.StatusConflict, dto.ErrorCodeConflict, "Student is already placed"},
	{apperrors.ErrCertificateAlreadyIssued, http.StatusConflict, dto.ErrorCodeConflict, "Certificate already issued"},
	{apperrors.ErrIssuanceInProgress, http.StatusConflict, dto.ErrorCodeConflict, "Certificate issuance in progress"},

	// placement workflow
	{apperrors.ErrNotEligible, http.StatusUnprocessableEntity, dto.ErrorCodeNotEligible, "Not eligible for this job"},
	{apperrors.ErrJobClosed, http.StatusUnprocessableEntity, dto.ErrorCodeJobClosed, "Job is closed"},
	{apperrors.ErrDeadlinePassed, http.StatusUnprocessableEntity, dto.ErrorCodeJobClosed, "Application deadline has passed"},
	{apperrors.ErrCompanyInactive, http.StatusUnprocessableEntity, dto.ErrorCodeResourceInvalid, "Company is not active"},
	{apperrors.ErrInvalidStatusTransition, http.StatusUnprocessableEntity, dto.ErrorCodeInvalidTransition, "Invalid status transition"},
	{apperrors.ErrApplicationNotWithdrawable, http.StatusUnprocessableEntity, dto.ErrorCodeInvalidTransition, "Application can no longer be withdrawn"},
	{apperrors.ErrSlotFull, http.StatusConflict, dto.ErrorCodeSlotFull, "No interview capacity left for this day"},
	{apperrors.ErrInterviewInPast, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Interview must be in the future"},

	// input
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
}

// HandleAPIError maps a service error onto an HTTP status and error body.
// Unknown errors are logged and reported as a generic 500.
func HandleAPIError(c *gin.Context, err error) {
	var ce *apperrors.CustomError
	isCustom := errors.As(err, &ce)

	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)
		if isCustom && ce.Message != "" {
			detail.Message = ce.Message
		}
		if isCustom && len(ce.Details) > 0 {
			detail = detail.WithDetails(ce.Details)
		}
		if m.status < http.StatusInternalServerError {
			detail = detail.WithSeverity(dto.ErrorSeverityWarning)
		}
		c.JSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}

// HandleBindError responds to a request body or query that failed binding
func HandleBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}

// HandleInvalidID responds to a malformed path ID
func HandleInvalidID(c *gin.Context, name string) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
		WithField(name).
		WithDetails(name + " must be a positive number")
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
