package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/email"
	"github.com/yigit/placementhub/internal/pkg/helpers"
	"github.com/yigit/placementhub/internal/pkg/notify"
	"github.com/yigit/placementhub/internal/pkg/search"
)

// ApplicationService runs the hiring pipeline
type ApplicationService interface {
	List(ctx context.Context, actor auth.Actor, opts search.Options) (search.Page[*models.Application], error)
	GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Application, error)
	Apply(ctx context.Context, actor auth.Actor, jobID int64) (*models.Application, error)
	Withdraw(ctx context.Context, actor auth.Actor, id int64) error
	UpdateStatus(ctx context.Context, actor auth.Actor, id int64, status models.ApplicationStatus, remarks string) (*models.Application, error)
	BulkUpdateStatus(ctx context.Context, actor auth.Actor, req *dto.BulkStatusRequest) dto.BulkStatusResult
}

type applicationService struct {
	applicationRepo repositories.IApplicationRepository
	jobRepo         repositories.IJobRepository
	studentRepo     repositories.IStudentRepository
	companyRepo     repositories.ICompanyRepository
	authz           *auth.AuthorizationService
	notifier        Notifier
	emailService    email.EmailService
	logger          zerolog.Logger
	now             func() time.Time
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	applicationRepo repositories.IApplicationRepository,
	jobRepo repositories.IJobRepository,
	studentRepo repositories.IStudentRepository,
	companyRepo repositories.ICompanyRepository,
	authz *auth.AuthorizationService,
	notifier Notifier,
	emailService email.EmailService,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationService{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		studentRepo:     studentRepo,
		companyRepo:     companyRepo,
		authz:           authz,
		notifier:        notifier,
		emailService:    emailService,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *applicationService) List(ctx context.Context, actor auth.Actor, opts search.Options) (search.Page[*models.Application], error) {
	scope, err := s.authz.ScopeFor(ctx, actor)
	if err != nil {
		return search.Page[*models.Application]{}, err
	}
	apps, err := s.applicationRepo.List(ctx, repositories.ApplicationFilter{
		StudentID: scope.StudentID,
		CompanyID: scope.CompanyID,
	})
	if err != nil {
		return search.Page[*models.Application]{}, err
	}
	return search.Run(apps, opts), nil
}

func (s *applicationService) GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateApplicationAccess(ctx, actor, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Apply submits the student's application after checking the job is open,
// the deadline has not passed and the student is eligible
func (s *applicationService) Apply(ctx context.Context, actor auth.Actor, jobID int64) (*models.Application, error) {
	student, err := s.authz.StudentFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != models.JobOpen {
		return nil, apperrors.ErrJobClosed
	}
	if !s.now().Before(job.Deadline) {
		return nil, apperrors.ErrDeadlinePassed
	}
	if e := job.CheckEligibility(student); e != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrNotEligible, e.Reason).
			WithDetails(map[string]any{
				"jobId":              job.ID,
				"minCgpa":            job.MinCGPA,
				"allowedDepartments": job.AllowedDepartments,
			})
	}

	app := &models.Application{StudentID: student.ID, JobID: job.ID, Status: models.ApplicationApplied}
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("applicationID", app.ID).Int64("studentID", student.ID).Int64("jobID", job.ID).Msg("Application submitted")

	created, err := s.applicationRepo.GetByID(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	if company, err := s.companyRepo.GetByID(ctx, job.CompanyID); err == nil {
		notifyUser(s.notifier, company.UserID, notify.TypeApplication, "New application",
			fmt.Sprintf("%s applied for %s.", student.Name, job.Title),
			fmt.Sprintf("/applications/%d", app.ID))
	}
	return created, nil
}

// Withdraw deletes the student's own application while it is still applied
func (s *applicationService) Withdraw(ctx context.Context, actor auth.Actor, id int64) error {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleStudent && !actor.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}
	if err := s.authz.ValidateStudentOwnership(ctx, actor, app.StudentID); err != nil {
		return err
	}
	if app.Status != models.ApplicationApplied {
		return apperrors.ErrApplicationNotWithdrawable
	}
	if err := s.applicationRepo.Withdraw(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("applicationID", id).Msg("Application withdrawn")
	return nil
}

// UpdateStatus moves an application along the pipeline. Selecting a student
// places them and counts the hire in one transaction.
func (s *applicationService) UpdateStatus(ctx context.Context, actor auth.Actor, id int64, status models.ApplicationStatus, remarks string) (*models.Application, error) {
	if actor.Role == models.RoleStudent {
		return nil, apperrors.ErrPermissionDenied
	}
	if !status.Valid() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown status %q", status))
	}

	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateApplicationAccess(ctx, actor, app); err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(status) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStatusTransition,
			fmt.Sprintf("cannot move application from %s to %s", app.Status, status))
	}

	note := helpers.NilIfEmpty(strings.TrimSpace(remarks))
	if status == models.ApplicationSelected {
		job, err := s.jobRepo.GetByID(ctx, app.JobID)
		if err != nil {
			return nil, err
		}
		if err := s.applicationRepo.MarkSelected(ctx, app, job.MaxPackage, note); err != nil {
			return nil, err
		}
	} else if err := s.applicationRepo.UpdateStatus(ctx, id, app.Status, status, note); err != nil {
		return nil, err
	}

	previous := app.Status
	app.Status = status
	if note != nil {
		app.Remarks = note
	}
	s.logger.Info().Int64("applicationID", id).Str("from", string(previous)).Str("to", string(status)).Msg("Application status changed")

	s.announce(ctx, app)
	return app, nil
}

// announce tells the student about a status change in-app and by email.
// Failures are logged; the status change already happened.
func (s *applicationService) announce(ctx context.Context, app *models.Application) {
	student, err := s.studentRepo.GetByID(ctx, app.StudentID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("studentID", app.StudentID).Msg("Could not load student for status notification")
		return
	}

	typ := notify.TypeApplication
	title := "Application " + string(app.Status)
	if app.Status == models.ApplicationSelected {
		typ = notify.TypePlacement
		title = "Congratulations, you have been selected"
	}
	notifyUser(s.notifier, student.UserID, typ, title,
		fmt.Sprintf("Your application for %s at %s is now %s.", app.JobTitle, app.CompanyName, app.Status),
		fmt.Sprintf("/applications/%d", app.ID))

	if s.emailService == nil {
		return
	}
	if err := s.emailService.SendApplicationStatusEmail(student.Email, student.Name, app.JobTitle, app.CompanyName, string(app.Status)); err != nil {
		s.logger.Warn().Err(err).Int64("applicationID", app.ID).Msg("Failed to send status email")
	}
}

// BulkUpdateStatus applies one change to many applications and reports the
// outcome of each
func (s *applicationService) BulkUpdateStatus(ctx context.Context, actor auth.Actor, req *dto.BulkStatusRequest) dto.BulkStatusResult {
	result := dto.BulkStatusResult{Updated: []int64{}, Failed: map[int64]string{}}
	status := models.ApplicationStatus(req.Status)

	seen := map[int64]bool{}
	for _, id := range req.ApplicationIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, err := s.UpdateStatus(ctx, actor, id, status, req.Remarks); err != nil {
			var ce *apperrors.CustomError
			if errors.As(err, &ce) || isClientError(err) {
				result.Failed[id] = err.Error()
			} else {
				s.logger.Error().Err(err).Int64("applicationID", id).Msg("Bulk status update failed")
				result.Failed[id] = "internal error"
			}
			continue
		}
		result.Updated = append(result.Updated, id)
	}
	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result
}

// isClientError reports whether err is a known sentinel safe to show callers
func isClientError(err error) bool {
	return apperrors.IsAny(err, apperrors.ErrApplicationNotFound,
		apperrors.ErrPermissionDenied,
		apperrors.ErrInvalidStatusTransition,
		apperrors.ErrStudentAlreadyPlaced,
		apperrors.ErrJobNotFound,
		apperrors.ErrStudentProfileIncomplete,
	)
}
