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
	"github.com/yigit/placementhub/internal/pkg/notify"
	"github.com/yigit/placementhub/internal/pkg/search"
)

// JobService manages job postings
type JobService interface {
	List(ctx context.Context, actor auth.Actor, opts search.Options) (search.Page[*models.Job], error)
	GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Job, error)
	Create(ctx context.Context, actor auth.Actor, req *dto.CreateJobRequest) (*models.Job, error)
	Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateJobRequest) (*models.Job, error)
	Close(ctx context.Context, actor auth.Actor, id int64) (*models.Job, error)
	Delete(ctx context.Context, actor auth.Actor, id int64) error
	Eligible(ctx context.Context, actor auth.Actor, includeIneligible bool) ([]dto.EligibleJobResponse, error)
	CloseExpired(ctx context.Context) (int64, error)
}

type jobService struct {
	jobRepo         repositories.IJobRepository
	companyRepo     repositories.ICompanyRepository
	applicationRepo repositories.IApplicationRepository
	authz           *auth.AuthorizationService
	notifier        Notifier
	logger          zerolog.Logger
	now             func() time.Time
}

// NewJobService creates a new JobService
func NewJobService(
	jobRepo repositories.IJobRepository,
	companyRepo repositories.ICompanyRepository,
	applicationRepo repositories.IApplicationRepository,
	authz *auth.AuthorizationService,
	notifier Notifier,
	logger zerolog.Logger,
) JobService {
	return &jobService{
		jobRepo:         jobRepo,
		companyRepo:     companyRepo,
		applicationRepo: applicationRepo,
		authz:           authz,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
	}
}

// List returns jobs visible to the actor: everything for admins, their own
// postings for companies and open postings for students.
func (s *jobService) List(ctx context.Context, actor auth.Actor, opts search.Options) (search.Page[*models.Job], error) {
	filter := repositories.JobFilter{}
	switch actor.Role {
	case models.RoleCompany:
		company, err := s.authz.CompanyFor(ctx, actor)
		if err != nil {
			return search.Page[*models.Job]{}, err
		}
		filter.CompanyID = &company.ID
	case models.RoleStudent:
		filter.Status = models.JobOpen
	}

	jobs, err := s.jobRepo.List(ctx, filter)
	if err != nil {
		return search.Page[*models.Job]{}, err
	}
	return search.Run(jobs, opts), nil
}

func (s *jobService) GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCompany {
		if err := s.authz.ValidateCompanyOwnership(ctx, actor, job.CompanyID); err != nil {
			return nil, err
		}
	}
	return job, nil
}

// owned loads a job the actor may manage
func (s *jobService) owned(ctx context.Context, actor auth.Actor, id int64) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateCompanyOwnership(ctx, actor, job.CompanyID); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) Create(ctx context.Context, actor auth.Actor, req *dto.CreateJobRequest) (*models.Job, error) {
	companyID := req.CompanyID
	if actor.Role == models.RoleCompany {
		company, err := s.authz.CompanyFor(ctx, actor)
		if err != nil {
			return nil, err
		}
		companyID = company.ID
	}
	if companyID <= 0 {
		return nil, apperrors.NewBadRequestError("companyId is required")
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company.Status != models.CompanyActive {
		return nil, apperrors.ErrCompanyInactive
	}
	if !req.Deadline.After(s.now()) {
		return nil, apperrors.NewBadRequestError("deadline must be in the future")
	}

	job := &models.Job{
		CompanyID:          company.ID,
		CompanyName:        company.Name,
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		Type:               models.JobType(req.Type),
		Location:           strings.TrimSpace(req.Location),
		MinPackage:         req.MinPackage,
		MaxPackage:         req.MaxPackage,
		MinCGPA:            req.MinCGPA,
		AllowedDepartments: cleanList(req.AllowedDepartments),
		Skills:             cleanList(req.Skills),
		Openings:           max(req.Openings, 1),
		Deadline:           req.Deadline,
		Status:             models.JobOpen,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("jobID", job.ID).Int64("companyID", job.CompanyID).Msg("Job posted")
	if s.notifier != nil {
		s.notifier.Add(notify.Notification{
			Type:    notify.TypeJob,
			Title:   "New job posted",
			Message: fmt.Sprintf("%s is hiring for %s. Apply before %s.", company.Name, job.Title, job.Deadline.Format("02 Jan 2006")),
			Link:    fmt.Sprintf("/jobs/%d", job.ID),
			Role:    string(models.RoleStudent),
		})
	}
	return job, nil
}

func (s *jobService) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateJobRequest) (*models.Job, error) {
	job, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = strings.TrimSpace(*req.Description)
	}
	if req.Type != nil {
		job.Type = models.JobType(*req.Type)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.MinPackage != nil {
		job.MinPackage = *req.MinPackage
	}
	if req.MaxPackage != nil {
		job.MaxPackage = *req.MaxPackage
	}
	if req.MinCGPA != nil {
		job.MinCGPA = *req.MinCGPA
	}
	if req.AllowedDepartments != nil {
		job.AllowedDepartments = cleanList(*req.AllowedDepartments)
	}
	if req.Skills != nil {
		job.Skills = cleanList(*req.Skills)
	}
	if req.Openings != nil {
		job.Openings = *req.Openings
	}
	if req.Deadline != nil {
		job.Deadline = *req.Deadline
	}
	if req.Status != nil {
		job.Status = models.JobStatus(*req.Status)
	}

	if job.MaxPackage < job.MinPackage {
		return nil, apperrors.NewBadRequestError("maxPackage must not be below minPackage")
	}
	if job.Status == models.JobOpen && !job.Deadline.After(s.now()) {
		return nil, apperrors.NewBadRequestError("an open job needs a future deadline")
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) Close(ctx context.Context, actor auth.Actor, id int64) (*models.Job, error) {
	job, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if job.Status == models.JobClosed {
		return job, nil
	}
	job.Status = models.JobClosed
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("jobID", id).Msg("Job closed")
	return job, nil
}

func (s *jobService) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.jobRepo.Delete(ctx, id)
}

// Eligible lists open jobs still accepting applications, annotated with the
// student's eligibility and whether they already applied
func (s *jobService) Eligible(ctx context.Context, actor auth.Actor, includeIneligible bool) ([]dto.EligibleJobResponse, error) {
	student, err := s.authz.StudentFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobRepo.List(ctx, repositories.JobFilter{Status: models.JobOpen})
	if err != nil {
		return nil, err
	}
	apps, err := s.applicationRepo.List(ctx, repositories.ApplicationFilter{StudentID: &student.ID})
	if err != nil {
		return nil, err
	}
	applied := make(map[int64]bool, len(apps))
	for _, a := range apps {
		applied[a.JobID] = true
	}

	now := s.now()
	out := []dto.EligibleJobResponse{}
	for _, job := range jobs {
		if !job.AcceptingApplications(now) {
			continue
		}
		resp := dto.EligibleJobResponse{Job: job, Eligible: true, Applied: applied[job.ID]}
		if e := job.CheckEligibility(student); e != nil {
			if !includeIneligible {
				continue
			}
			resp.Eligible = false
			resp.Reason = e.Reason
		}
		out = append(out, resp)
	}
	return out, nil
}

// CloseExpired closes open jobs whose deadline has passed
func (s *jobService) CloseExpired(ctx context.Context) (int64, error) {
	n, err := s.jobRepo.CloseExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("closed", n).Msg("Closed jobs past their deadline")
	}
	return n, nil
}
