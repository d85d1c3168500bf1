package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/dberrors"
)

// JobFilter narrows job listings at the SQL level
type JobFilter struct {
	CompanyID *int64
	Status    models.JobStatus
}

// IJobRepository defines the job data operations services depend on
type IJobRepository interface {
	List(ctx context.Context, filter JobFilter) ([]*models.Job, error)
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id int64) error
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
}

// JobRepository handles the 'jobs' table
type JobRepository struct {
	db *pgxpool.Pool
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

var jobColumns = []string{
	"j.id", "j.company_id", "c.name", "j.title", "j.description", "j.type", "j.location",
	"j.min_package", "j.max_package", "j.min_cgpa", "j.allowed_departments", "j.skills",
	"j.openings", "j.deadline", "j.status",
	"(SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)",
	"j.created_at", "j.updated_at",
}

func scanJob(row rowScanner) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.CompanyID, &j.CompanyName, &j.Title, &j.Description, &j.Type, &j.Location,
		&j.MinPackage, &j.MaxPackage, &j.MinCGPA, &j.AllowedDepartments, &j.Skills,
		&j.Openings, &j.Deadline, &j.Status, &j.ApplicationCount, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.AllowedDepartments = nonNil(j.AllowedDepartments)
	j.Skills = nonNil(j.Skills)
	return &j, nil
}

func jobSelect() squirrel.SelectBuilder {
	return psql.Select(jobColumns...).From("jobs j").Join("companies c ON c.id = j.company_id")
}

// List returns jobs matching filter, newest first
func (r *JobRepository) List(ctx context.Context, filter JobFilter) ([]*models.Job, error) {
	q := jobSelect().OrderBy("j.created_at DESC")
	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"j.company_id": *filter.CompanyID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"j.status": filter.Status})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list jobs query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing jobs: %w", err)
	}
	return collect(rows, scanJob)
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	sql, args, err := jobSelect().Where(squirrel.Eq{"j.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}

	job, err := scanJob(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, fmt.Errorf("error retrieving job: %w", err)
	}
	return job, nil
}

// Create inserts a job
func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	if j.Status == "" {
		j.Status = models.JobOpen
	}
	now := time.Now()
	sql, args, err := psql.Insert("jobs").
		Columns("company_id", "title", "description", "type", "location", "min_package", "max_package",
			"min_cgpa", "allowed_departments", "skills", "openings", "deadline", "status", "created_at", "updated_at").
		Values(j.CompanyID, j.Title, j.Description, j.Type, j.Location, j.MinPackage, j.MaxPackage,
			j.MinCGPA, nonNil(j.AllowedDepartments), nonNil(j.Skills), j.Openings, j.Deadline, j.Status, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create job query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCompanyNotFound
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("job package range or type is invalid")
		}
		return fmt.Errorf("error creating job: %w", err)
	}
	return nil
}

// Update writes every mutable column of a job
func (r *JobRepository) Update(ctx context.Context, j *models.Job) error {
	sql, args, err := psql.Update("jobs").
		SetMap(map[string]interface{}{
			"title":               j.Title,
			"description":         j.Description,
			"type":                j.Type,
			"location":            j.Location,
			"min_package":         j.MinPackage,
			"max_package":         j.MaxPackage,
			"min_cgpa":            j.MinCGPA,
			"allowed_departments": nonNil(j.AllowedDepartments),
			"skills":              nonNil(j.Skills),
			"openings":            j.Openings,
			"deadline":            j.Deadline,
			"status":              j.Status,
			"updated_at":          squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": j.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update job query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&j.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrJobNotFound
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("job package range or type is invalid")
		}
		return fmt.Errorf("error updating job: %w", err)
	}
	return nil
}

// Delete removes a job that has no applications
func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrJobHasApplications
		}
		return fmt.Errorf("error deleting job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// CloseExpired closes every open job whose deadline is before now
func (r *JobRepository) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := psql.Update("jobs").
		Set("status", models.JobClosed).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": models.JobOpen}).
		Where(squirrel.Lt{"deadline": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build close expired jobs query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error closing expired jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}
