package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/placementhub/internal/app/models"
)

// LabelCount is one row of a grouped count
type LabelCount struct {
	Label string
	Count int
}

// DepartmentRow aggregates placement numbers for a department
type DepartmentRow struct {
	Department string
	Total      int
	Placed     int
	AvgPackage float64
}

// HiresRow is a company's hire total
type HiresRow struct {
	CompanyID   int64
	CompanyName string
	Hires       int
}

// PackageSummary holds package aggregates over placed students
type PackageSummary struct {
	Placed  int
	Average float64
	Highest float64
}

// IStatsRepository defines the aggregate queries behind the dashboards
type IStatsRepository interface {
	CountStudents(ctx context.Context) (int, error)
	StudentsByStatus(ctx context.Context) ([]LabelCount, error)
	Packages(ctx context.Context) (PackageSummary, error)
	Departments(ctx context.Context) ([]DepartmentRow, error)
	TopRecruiters(ctx context.Context, limit int) ([]HiresRow, error)
	CountActiveCompanies(ctx context.Context) (int, error)
	CountOpenJobs(ctx context.Context, companyID *int64) (int, error)
	ApplicationFunnel(ctx context.Context, companyID *int64) ([]LabelCount, error)
	CountUpcomingInterviews(ctx context.Context, from time.Time) (int, error)
}

// StatsRepository runs read-only aggregate queries
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) count(ctx context.Context, what, sql string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting %s: %w", what, err)
	}
	return n, nil
}

func (r *StatsRepository) labelCounts(ctx context.Context, what, sql string, args ...any) ([]LabelCount, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error grouping %s: %w", what, err)
	}
	return collect(rows, func(row rowScanner) (LabelCount, error) {
		var lc LabelCount
		err := row.Scan(&lc.Label, &lc.Count)
		return lc, err
	})
}

// CountStudents returns the number of student records
func (r *StatsRepository) CountStudents(ctx context.Context) (int, error) {
	return r.count(ctx, "students", `SELECT COUNT(*) FROM students`)
}

// StudentsByStatus groups students by placement status
func (r *StatsRepository) StudentsByStatus(ctx context.Context) ([]LabelCount, error) {
	return r.labelCounts(ctx, "students by status",
		`SELECT placement_status, COUNT(*) FROM students GROUP BY placement_status ORDER BY placement_status`)
}

// Packages summarises the packages of placed students
func (r *StatsRepository) Packages(ctx context.Context) (PackageSummary, error) {
	var p PackageSummary
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(package_lpa), 0)::float8, COALESCE(MAX(package_lpa), 0)::float8
		 FROM students WHERE placement_status = $1`, models.PlacementPlaced).
		Scan(&p.Placed, &p.Average, &p.Highest)
	if err != nil {
		return PackageSummary{}, fmt.Errorf("error summarising packages: %w", err)
	}
	return p, nil
}

// Departments returns per-department placement numbers
func (r *StatsRepository) Departments(ctx context.Context) ([]DepartmentRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT department,
		        COUNT(*),
		        COUNT(*) FILTER (WHERE placement_status = $1),
		        COALESCE(AVG(package_lpa) FILTER (WHERE placement_status = $1), 0)::float8
		 FROM students GROUP BY department ORDER BY department`, models.PlacementPlaced)
	if err != nil {
		return nil, fmt.Errorf("error grouping departments: %w", err)
	}
	return collect(rows, func(row rowScanner) (DepartmentRow, error) {
		var d DepartmentRow
		err := row.Scan(&d.Department, &d.Total, &d.Placed, &d.AvgPackage)
		return d, err
	})
}

// TopRecruiters returns the companies with the most hires
func (r *StatsRepository) TopRecruiters(ctx context.Context, limit int) ([]HiresRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, total_hires FROM companies WHERE total_hires > 0
		 ORDER BY total_hires DESC, name ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing top recruiters: %w", err)
	}
	return collect(rows, func(row rowScanner) (HiresRow, error) {
		var h HiresRow
		err := row.Scan(&h.CompanyID, &h.CompanyName, &h.Hires)
		return h, err
	})
}

// CountActiveCompanies counts companies with active status
func (r *StatsRepository) CountActiveCompanies(ctx context.Context) (int, error) {
	return r.count(ctx, "active companies", `SELECT COUNT(*) FROM companies WHERE status = $1`, models.CompanyActive)
}

// CountOpenJobs counts open jobs, optionally for one company
func (r *StatsRepository) CountOpenJobs(ctx context.Context, companyID *int64) (int, error) {
	if companyID != nil {
		return r.count(ctx, "open jobs",
			`SELECT COUNT(*) FROM jobs WHERE status = $1 AND company_id = $2`, models.JobOpen, *companyID)
	}
	return r.count(ctx, "open jobs", `SELECT COUNT(*) FROM jobs WHERE status = $1`, models.JobOpen)
}

// ApplicationFunnel groups applications by status, optionally for one company
func (r *StatsRepository) ApplicationFunnel(ctx context.Context, companyID *int64) ([]LabelCount, error) {
	if companyID != nil {
		return r.labelCounts(ctx, "applications",
			`SELECT a.status, COUNT(*) FROM applications a JOIN jobs j ON j.id = a.job_id
			 WHERE j.company_id = $1 GROUP BY a.status`, *companyID)
	}
	return r.labelCounts(ctx, "applications", `SELECT status, COUNT(*) FROM applications GROUP BY status`)
}

// CountUpcomingInterviews counts scheduled interviews from the given time on
func (r *StatsRepository) CountUpcomingInterviews(ctx context.Context, from time.Time) (int, error) {
	return r.count(ctx, "upcoming interviews",
		`SELECT COUNT(*) FROM interviews WHERE status = $1 AND scheduled_at >= $2`, models.InterviewScheduled, from)
}
