package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/logger"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID int64
	Role   models.RoleType
}

// IsAdmin reports whether the actor is the placement cell
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// Scope restricts listings to what an actor owns. Nil fields are unrestricted.
type Scope struct {
	StudentID *int64
	CompanyID *int64
}

// AuthorizationService resolves actors to their student or company records
// and checks ownership
type AuthorizationService struct {
	studentRepo repositories.IStudentRepository
	companyRepo repositories.ICompanyRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(studentRepo repositories.IStudentRepository, companyRepo repositories.ICompanyRepository) *AuthorizationService {
	return &AuthorizationService{
		studentRepo: studentRepo,
		companyRepo: companyRepo,
	}
}

// StudentFor returns the student record linked to a student actor
func (s *AuthorizationService) StudentFor(ctx context.Context, actor Actor) (*models.Student, error) {
	if actor.Role != models.RoleStudent {
		return nil, apperrors.ErrPermissionDenied
	}
	student, err := s.studentRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			logger.Warn().Int64("userID", actor.UserID).Msg("Student record not found for student user")
			return nil, apperrors.ErrStudentProfileIncomplete
		}
		return nil, fmt.Errorf("error resolving student: %w", err)
	}
	return student, nil
}

// CompanyFor returns the company record linked to a company actor
func (s *AuthorizationService) CompanyFor(ctx context.Context, actor Actor) (*models.Company, error) {
	if actor.Role != models.RoleCompany {
		return nil, apperrors.ErrPermissionDenied
	}
	company, err := s.companyRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCompanyNotFound) {
			logger.Warn().Int64("userID", actor.UserID).Msg("Company record not found for company user")
			return nil, apperrors.ErrPermissionDenied
		}
		return nil, fmt.Errorf("error resolving company: %w", err)
	}
	return company, nil
}

// ScopeFor returns the listing scope of an actor
func (s *AuthorizationService) ScopeFor(ctx context.Context, actor Actor) (Scope, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return Scope{}, nil
	case models.RoleStudent:
		student, err := s.StudentFor(ctx, actor)
		if err != nil {
			return Scope{}, err
		}
		return Scope{StudentID: &student.ID}, nil
	case models.RoleCompany:
		company, err := s.CompanyFor(ctx, actor)
		if err != nil {
			return Scope{}, err
		}
		return Scope{CompanyID: &company.ID}, nil
	}
	return Scope{}, apperrors.ErrPermissionDenied
}

// ValidateCompanyOwnership allows admins and the company's own recruiter
func (s *AuthorizationService) ValidateCompanyOwnership(ctx context.Context, actor Actor, companyID int64) error {
	if actor.IsAdmin() {
		return nil
	}
	company, err := s.CompanyFor(ctx, actor)
	if err != nil {
		return err
	}
	if company.ID != companyID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// ValidateStudentOwnership allows admins and the student themselves
func (s *AuthorizationService) ValidateStudentOwnership(ctx context.Context, actor Actor, studentID int64) error {
	if actor.IsAdmin() {
		return nil
	}
	student, err := s.StudentFor(ctx, actor)
	if err != nil {
		return err
	}
	if student.ID != studentID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// ValidateApplicationAccess allows admins, the applicant and the hiring company
func (s *AuthorizationService) ValidateApplicationAccess(ctx context.Context, actor Actor, app *models.Application) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStudent:
		return s.ValidateStudentOwnership(ctx, actor, app.StudentID)
	case models.RoleCompany:
		return s.ValidateCompanyOwnership(ctx, actor, app.CompanyID)
	}
	return apperrors.ErrPermissionDenied
}
