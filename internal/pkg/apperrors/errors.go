// Package apperrors holds the sentinel errors services return. The HTTP layer
// maps each sentinel onto a status code and error code.
package apperrors

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")

	ErrPermissionDenied = errors.New("permission denied")
	ErrBadRequest       = errors.New("bad request")
)

// Accounts
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrInvalidEmailToken    = errors.New("invalid or expired email verification token")
	ErrEmailAlreadyVerified = errors.New("email already verified")
	ErrInvalidResetToken    = errors.New("invalid or expired password reset token")
)

// Students and companies
var (
	ErrStudentNotFound          = errors.New("student not found")
	ErrRollNumberAlreadyExists  = errors.New("roll number already exists")
	ErrStudentProfileIncomplete = errors.New("student profile not linked to this account")

	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyAlreadyExists = errors.New("company with this name already exists")
	ErrCompanyHasJobs       = errors.New("company has job postings and cannot be deleted")
	ErrCompanyInactive      = errors.New("company is not active")
)

// Jobs and applications
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrJobClosed          = errors.New("job is closed for applications")
	ErrDeadlinePassed     = errors.New("application deadline has passed")
	ErrNotEligible        = errors.New("student is not eligible for this job")
	ErrJobHasApplications = errors.New("job has applications and cannot be deleted")

	ErrApplicationNotFound        = errors.New("application not found")
	ErrAlreadyApplied             = errors.New("student has already applied to this job")
	ErrInvalidStatusTransition    = errors.New("invalid application status transition")
	ErrApplicationNotWithdrawable = errors.New("application can no longer be withdrawn")
	ErrStudentAlreadyPlaced       = errors.New("student is already placed")
)

// Certificates, interviews, notifications
var (
	ErrCertificateNotFound      = errors.New("certificate not found")
	ErrCertificateAlreadyIssued = errors.New("certificate already issued on chain")
	ErrIssuanceInProgress       = errors.New("certificate issuance already in progress")

	ErrInterviewNotFound = errors.New("interview not found")
	ErrSlotFull          = errors.New("no interview capacity left for this day")
	ErrInterviewInPast   = errors.New("interview cannot be scheduled in the past")

	ErrNotificationNotFound = errors.New("notification not found")
)

// CustomError attaches a caller-facing message, and optionally structured
// details, to a sentinel. errors.Is still matches the sentinel.
type CustomError struct {
	Err     error
	Message string
	Details map[string]any
}

func (e *CustomError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error { return e.Err }

// WithDetails sets the structured details reported alongside the message.
func (e *CustomError) WithDetails(details map[string]any) *CustomError {
	e.Details = details
	return e
}

func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

func NewBadRequestError(message string) error {
	return NewCustomError(ErrBadRequest, message)
}

func NewForbiddenError(message string) error {
	return NewCustomError(ErrPermissionDenied, message)
}

// IsAny reports whether err matches any of targets.
func IsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
