package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
)

const topRecruiterLimit = 5

// DashboardService assembles the per-role overview pages
type DashboardService interface {
	Admin(ctx context.Context) (*dto.AdminDashboard, error)
	Student(ctx context.Context, actor auth.Actor) (*dto.StudentDashboard, error)
	Company(ctx context.Context, actor auth.Actor) (*dto.CompanyDashboard, error)
}

type dashboardService struct {
	statsRepo       repositories.IStatsRepository
	jobRepo         repositories.IJobRepository
	applicationRepo repositories.IApplicationRepository
	interviewRepo   repositories.IInterviewRepository
	certRepo        repositories.ICertificateRepository
	authz           *auth.AuthorizationService
	notifications   NotificationService
	logger          zerolog.Logger
	now             func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	statsRepo repositories.IStatsRepository,
	jobRepo repositories.IJobRepository,
	applicationRepo repositories.IApplicationRepository,
	interviewRepo repositories.IInterviewRepository,
	certRepo repositories.ICertificateRepository,
	authz *auth.AuthorizationService,
	notifications NotificationService,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		statsRepo:       statsRepo,
		jobRepo:         jobRepo,
		applicationRepo: applicationRepo,
		interviewRepo:   interviewRepo,
		certRepo:        certRepo,
		authz:           authz,
		notifications:   notifications,
		logger:          logger,
		now:             time.Now,
	}
}

// Admin gathers every aggregate concurrently; the first failure cancels the rest.
func (s *dashboardService) Admin(ctx context.Context) (*dto.AdminDashboard, error) {
	var (
		total       int
		byStatus    []repositories.LabelCount
		packages    repositories.PackageSummary
		departments []repositories.DepartmentRow
		recruiters  []repositories.HiresRow
		companies   int
		openJobs    int
		funnel      []repositories.LabelCount
		upcoming    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { total, err = s.statsRepo.CountStudents(gctx); return })
	g.Go(func() (err error) { byStatus, err = s.statsRepo.StudentsByStatus(gctx); return })
	g.Go(func() (err error) { packages, err = s.statsRepo.Packages(gctx); return })
	g.Go(func() (err error) { departments, err = s.statsRepo.Departments(gctx); return })
	g.Go(func() (err error) { recruiters, err = s.statsRepo.TopRecruiters(gctx, topRecruiterLimit); return })
	g.Go(func() (err error) { companies, err = s.statsRepo.CountActiveCompanies(gctx); return })
	g.Go(func() (err error) { openJobs, err = s.statsRepo.CountOpenJobs(gctx, nil); return })
	g.Go(func() (err error) { funnel, err = s.statsRepo.ApplicationFunnel(gctx, nil); return })
	g.Go(func() (err error) { upcoming, err = s.statsRepo.CountUpcomingInterviews(gctx, s.now()); return })
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to build admin dashboard")
		return nil, err
	}

	out := &dto.AdminDashboard{
		TotalStudents:      total,
		PlacedStudents:     packages.Placed,
		PlacementRate:      percent(packages.Placed, total),
		AveragePackage:     round2(packages.Average),
		HighestPackage:     packages.Highest,
		ActiveCompanies:    companies,
		OpenJobs:           openJobs,
		UpcomingInterviews: upcoming,
		StatusBreakdown:    toCounts(byStatus),
		ApplicationFunnel:  toCounts(funnel),
		Departments:        make([]dto.DepartmentStat, 0, len(departments)),
		TopRecruiters:      make([]dto.CompanyHires, 0, len(recruiters)),
	}
	for _, f := range funnel {
		out.TotalApplications += f.Count
	}
	for _, d := range departments {
		out.Departments = append(out.Departments, dto.DepartmentStat{
			Department:    d.Department,
			Total:         d.Total,
			Placed:        d.Placed,
			PlacementRate: percent(d.Placed, d.Total),
			AvgPackage:    round2(d.AvgPackage),
		})
	}
	for _, r := range recruiters {
		out.TopRecruiters = append(out.TopRecruiters, dto.CompanyHires{CompanyID: r.CompanyID, CompanyName: r.CompanyName, Hires: r.Hires})
	}
	return out, nil
}

func (s *dashboardService) Student(ctx context.Context, actor auth.Actor) (*dto.StudentDashboard, error) {
	if actor.Role != models.RoleStudent {
		return nil, apperrors.ErrPermissionDenied
	}
	student, err := s.authz.StudentFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	var (
		apps       []*models.Application
		jobs       []*models.Job
		interviews []*models.Interview
		certs      []*models.Certificate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		apps, err = s.applicationRepo.List(gctx, repositories.ApplicationFilter{StudentID: &student.ID})
		return
	})
	g.Go(func() (err error) {
		jobs, err = s.jobRepo.List(gctx, repositories.JobFilter{Status: models.JobOpen})
		return
	})
	g.Go(func() (err error) {
		interviews, err = s.interviewRepo.List(gctx, repositories.InterviewFilter{StudentID: &student.ID})
		return
	})
	g.Go(func() (err error) {
		certs, err = s.certRepo.List(gctx, &student.ID)
		return
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Failed to build student dashboard")
		return nil, err
	}

	now := s.now()
	applied := make(map[int64]bool, len(apps))
	steps := map[string]int{}
	for _, a := range apps {
		applied[a.JobID] = true
		steps[string(a.Status)]++
	}
	eligible := 0
	for _, j := range jobs {
		if j.AcceptingApplications(now) && !applied[j.ID] && j.CheckEligibility(student) == nil {
			eligible++
		}
	}

	return &dto.StudentDashboard{
		Student:            student,
		ApplicationsByStep: pipelineCounts(steps),
		EligibleOpenJobs:   eligible,
		UpcomingInterviews: upcomingOnly(interviews, now),
		Certificates:       len(certs),
		UnreadNotices:      s.notifications.UnreadCount(actor),
	}, nil
}

func (s *dashboardService) Company(ctx context.Context, actor auth.Actor) (*dto.CompanyDashboard, error) {
	company, err := s.authz.CompanyFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	var (
		openJobs   int
		funnel     []repositories.LabelCount
		interviews []*models.Interview
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { openJobs, err = s.statsRepo.CountOpenJobs(gctx, &company.ID); return })
	g.Go(func() (err error) { funnel, err = s.statsRepo.ApplicationFunnel(gctx, &company.ID); return })
	g.Go(func() (err error) {
		interviews, err = s.interviewRepo.List(gctx, repositories.InterviewFilter{CompanyID: &company.ID})
		return
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int64("companyID", company.ID).Msg("Failed to build company dashboard")
		return nil, err
	}

	out := &dto.CompanyDashboard{
		Company:            company,
		OpenJobs:           openJobs,
		ApplicationFunnel:  toCounts(funnel),
		UpcomingInterviews: upcomingOnly(interviews, s.now()),
	}
	for _, f := range funnel {
		out.TotalApplications += f.Count
	}
	return out, nil
}

var pipelineOrder = []models.ApplicationStatus{
	models.ApplicationApplied,
	models.ApplicationShortlisted,
	models.ApplicationInterviewed,
	models.ApplicationSelected,
	models.ApplicationRejected,
}

// pipelineCounts reports every pipeline step, including empty ones, in order.
func pipelineCounts(steps map[string]int) []dto.CountByLabel {
	out := make([]dto.CountByLabel, 0, len(pipelineOrder))
	for _, st := range pipelineOrder {
		out = append(out, dto.CountByLabel{Label: string(st), Count: steps[string(st)]})
	}
	return out
}

func upcomingOnly(interviews []*models.Interview, now time.Time) []*models.Interview {
	out := []*models.Interview{}
	for _, iv := range interviews {
		if iv.Status == models.InterviewScheduled && iv.ScheduledAt.After(now) {
			out = append(out, iv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func toCounts(in []repositories.LabelCount) []dto.CountByLabel {
	out := make([]dto.CountByLabel, 0, len(in))
	for _, lc := range in {
		out = append(out, dto.CountByLabel{Label: lc.Label, Count: lc.Count})
	}
	return out
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) * 100 / float64(whole))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
