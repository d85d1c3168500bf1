package services

import (
	"context"
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

// InterviewConfig holds scheduling limits
type InterviewConfig struct {
	DailyCapacity   int
	DefaultDuration int
}

// InterviewService schedules interviews for applications
type InterviewService interface {
	List(ctx context.Context, actor auth.Actor, opts search.Options) (search.Page[*models.Interview], error)
	GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Interview, error)
	Schedule(ctx context.Context, actor auth.Actor, req *dto.ScheduleInterviewRequest) (*models.Interview, error)
	Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateInterviewRequest) (*models.Interview, error)
	Availability(ctx context.Context, actor auth.Actor, jobID int64, day time.Time) (*dto.AvailabilityResponse, error)
}

type interviewService struct {
	interviewRepo   repositories.IInterviewRepository
	applicationRepo repositories.IApplicationRepository
	jobRepo         repositories.IJobRepository
	studentRepo     repositories.IStudentRepository
	authz           *auth.AuthorizationService
	notifier        Notifier
	emailService    email.EmailService
	cfg             InterviewConfig
	logger          zerolog.Logger
	now             func() time.Time
}

// NewInterviewService creates a new InterviewService
func NewInterviewService(
	interviewRepo repositories.IInterviewRepository,
	applicationRepo repositories.IApplicationRepository,
	jobRepo repositories.IJobRepository,
	studentRepo repositories.IStudentRepository,
	authz *auth.AuthorizationService,
	notifier Notifier,
	emailService email.EmailService,
	cfg InterviewConfig,
	logger zerolog.Logger,
) InterviewService {
	if cfg.DailyCapacity <= 0 {
		cfg.DailyCapacity = 8
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 45
	}
	return &interviewService{
		interviewRepo:   interviewRepo,
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		studentRepo:     studentRepo,
		authz:           authz,
		notifier:        notifier,
		emailService:    emailService,
		cfg:             cfg,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *interviewService) List(ctx context.Context, actor auth.Actor, opts search.Options) (search.Page[*models.Interview], error) {
	scope, err := s.authz.ScopeFor(ctx, actor)
	if err != nil {
		return search.Page[*models.Interview]{}, err
	}
	items, err := s.interviewRepo.List(ctx, repositories.InterviewFilter{
		StudentID: scope.StudentID,
		CompanyID: scope.CompanyID,
	})
	if err != nil {
		return search.Page[*models.Interview]{}, err
	}
	return search.Run(items, opts), nil
}

func (s *interviewService) access(ctx context.Context, actor auth.Actor, iv *models.Interview) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStudent:
		return s.authz.ValidateStudentOwnership(ctx, actor, iv.StudentID)
	case models.RoleCompany:
		return s.authz.ValidateCompanyOwnership(ctx, actor, iv.CompanyID)
	}
	return apperrors.ErrPermissionDenied
}

func (s *interviewService) GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Interview, error) {
	iv, err := s.interviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access(ctx, actor, iv); err != nil {
		return nil, err
	}
	return iv, nil
}

// Schedule books a slot for a shortlisted or interviewed application. The
// per-job daily capacity is enforced by the repository.
func (s *interviewService) Schedule(ctx context.Context, actor auth.Actor, req *dto.ScheduleInterviewRequest) (*models.Interview, error) {
	if actor.Role == models.RoleStudent {
		return nil, apperrors.ErrPermissionDenied
	}
	app, err := s.applicationRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateApplicationAccess(ctx, actor, app); err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationShortlisted && app.Status != models.ApplicationInterviewed {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStatusTransition,
			"only shortlisted applications can be scheduled for interview")
	}
	if !req.ScheduledAt.After(s.now()) {
		return nil, apperrors.ErrInterviewInPast
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = s.cfg.DefaultDuration
	}
	iv := &models.Interview{
		ApplicationID:   app.ID,
		JobID:           app.JobID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		Mode:            models.InterviewMode(req.Mode),
		Location:        helpers.NilIfEmpty(strings.TrimSpace(req.Location)),
		Status:          models.InterviewScheduled,
		Notes:           helpers.NilIfEmpty(strings.TrimSpace(req.Notes)),
	}
	if err := s.interviewRepo.Create(ctx, iv, s.cfg.DailyCapacity); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("interviewID", iv.ID).Int64("applicationID", app.ID).Time("at", iv.ScheduledAt).Msg("Interview scheduled")

	s.announce(ctx, iv, "Interview scheduled")
	return iv, nil
}

// Update reschedules, completes or cancels an interview
func (s *interviewService) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateInterviewRequest) (*models.Interview, error) {
	if actor.Role == models.RoleStudent {
		return nil, apperrors.ErrPermissionDenied
	}
	iv, err := s.interviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access(ctx, actor, iv); err != nil {
		return nil, err
	}

	rescheduled, movedDay := false, false
	if req.ScheduledAt != nil && !req.ScheduledAt.Equal(iv.ScheduledAt) {
		if !req.ScheduledAt.After(s.now()) {
			return nil, apperrors.ErrInterviewInPast
		}
		movedDay = !sameDay(*req.ScheduledAt, iv.ScheduledAt)
		iv.ScheduledAt = *req.ScheduledAt
		rescheduled = true
	}
	if req.DurationMinutes != nil {
		iv.DurationMinutes = *req.DurationMinutes
	}
	if req.Status != nil {
		iv.Status = models.InterviewStatus(*req.Status)
	}
	if req.Location != nil {
		iv.Location = helpers.NilIfEmpty(strings.TrimSpace(*req.Location))
	}
	if req.Notes != nil {
		iv.Notes = helpers.NilIfEmpty(strings.TrimSpace(*req.Notes))
	}

	if movedDay && iv.Status == models.InterviewScheduled {
		err = s.interviewRepo.Reschedule(ctx, iv, s.cfg.DailyCapacity)
	} else {
		err = s.interviewRepo.Update(ctx, iv)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case req.Status != nil && iv.Status == models.InterviewCancelled:
		s.announce(ctx, iv, "Interview cancelled")
	case rescheduled:
		s.announce(ctx, iv, "Interview rescheduled")
	}
	return iv, nil
}

// Availability reports booked and remaining slots for a job on a day
func (s *interviewService) Availability(ctx context.Context, actor auth.Actor, jobID int64, day time.Time) (*dto.AvailabilityResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateCompanyOwnership(ctx, actor, job.CompanyID); err != nil {
		return nil, err
	}
	booked, err := s.interviewRepo.CountForDay(ctx, jobID, day)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{
		JobID:     jobID,
		Date:      day.Format(helpers.DateLayout),
		Capacity:  s.cfg.DailyCapacity,
		Booked:    booked,
		Remaining: max(s.cfg.DailyCapacity-booked, 0),
	}, nil
}

func (s *interviewService) announce(ctx context.Context, iv *models.Interview, title string) {
	student, err := s.studentRepo.GetByID(ctx, iv.StudentID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("interviewID", iv.ID).Msg("Could not load student for interview notification")
		return
	}
	when := iv.ScheduledAt.Format("Mon 02 Jan 2006 15:04 MST")
	notifyUser(s.notifier, student.UserID, notify.TypeInterview, title,
		fmt.Sprintf("%s at %s: %s (%s).", iv.JobTitle, iv.CompanyName, when, iv.Mode),
		fmt.Sprintf("/interviews/%d", iv.ID))

	if s.emailService == nil || iv.Status != models.InterviewScheduled {
		return
	}
	if err := s.emailService.SendInterviewScheduledEmail(student.Email, student.Name, iv.JobTitle, iv.CompanyName, when, string(iv.Mode)); err != nil {
		s.logger.Warn().Err(err).Int64("interviewID", iv.ID).Msg("Failed to send interview email")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
