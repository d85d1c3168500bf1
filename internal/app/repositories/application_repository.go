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
	"github.com/yigit/placementhub/internal/pkg/logger"
)

// ApplicationFilter scopes application listings by owner
type ApplicationFilter struct {
	StudentID *int64
	JobID     *int64
	CompanyID *int64
}

// IApplicationRepository defines the application data operations services depend on
type IApplicationRepository interface {
	List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, error)
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	Create(ctx context.Context, app *models.Application) error
	UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, remarks *string) error
	MarkSelected(ctx context.Context, app *models.Application, packageLPA float64, remarks *string) error
	Withdraw(ctx context.Context, id int64) error
}

// ApplicationRepository handles the 'applications' table
type ApplicationRepository struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

var applicationColumns = []string{
	"a.id", "a.student_id", "a.job_id", "a.status", "a.remarks", "a.applied_at", "a.updated_at",
	"s.name", "s.roll_number", "s.department", "s.cgpa",
	"j.title", "c.id", "c.name",
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.StudentID, &a.JobID, &a.Status, &a.Remarks, &a.AppliedAt, &a.UpdatedAt,
		&a.StudentName, &a.RollNumber, &a.Department, &a.CGPA,
		&a.JobTitle, &a.CompanyID, &a.CompanyName)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func applicationSelect() squirrel.SelectBuilder {
	return psql.Select(applicationColumns...).
		From("applications a").
		Join("students s ON s.id = a.student_id").
		Join("jobs j ON j.id = a.job_id").
		Join("companies c ON c.id = j.company_id")
}

// List returns applications matching filter, newest first
func (r *ApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, error) {
	q := applicationSelect().OrderBy("a.applied_at DESC")
	if filter.StudentID != nil {
		q = q.Where(squirrel.Eq{"a.student_id": *filter.StudentID})
	}
	if filter.JobID != nil {
		q = q.Where(squirrel.Eq{"a.job_id": *filter.JobID})
	}
	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"j.company_id": *filter.CompanyID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	return collect(rows, scanApplication)
}

// GetByID retrieves an application with its joined student and job details
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	sql, args, err := applicationSelect().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}
	return app, nil
}

// Create inserts an application and moves an unplaced student to in_process
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.Status == "" {
		app.Status = models.ApplicationApplied
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		now := time.Now()
		sql, args, err := psql.Insert("applications").
			Columns("student_id", "job_id", "status", "applied_at", "updated_at").
			Values(app.StudentID, app.JobID, app.Status, now, now).
			Suffix("RETURNING id, applied_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create application query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&app.ID, &app.AppliedAt, &app.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "applications_student_job_key") {
				return apperrors.ErrAlreadyApplied
			}
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrJobNotFound
			}
			return fmt.Errorf("error creating application: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE students SET placement_status = $1, updated_at = NOW() WHERE id = $2 AND placement_status = $3`,
			models.PlacementInProcess, app.StudentID, models.PlacementUnplaced)
		if err != nil {
			return fmt.Errorf("error updating student status: %w", err)
		}
		return nil
	})
}

// UpdateStatus moves an application from one non-selected status to another.
// The row only changes while it still holds from, so a concurrent change
// surfaces as ErrInvalidStatusTransition.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, remarks *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE applications SET status = $1, remarks = COALESCE($2, remarks), updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		to, remarks, id, from)
	if err != nil {
		return fmt.Errorf("error updating application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidStatusTransition
	}
	return nil
}

// MarkSelected records a selection in one transaction: the application is
// selected, the student is placed with the company and package, and the
// company's hire counters are incremented.
func (r *ApplicationRepository) MarkSelected(ctx context.Context, app *models.Application, packageLPA float64, remarks *string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE applications SET status = $1, remarks = COALESCE($2, remarks), updated_at = NOW()
			 WHERE id = $3 AND status = $4`,
			models.ApplicationSelected, remarks, app.ID, models.ApplicationInterviewed)
		if err != nil {
			return fmt.Errorf("error selecting application: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrInvalidStatusTransition
		}

		tag, err = tx.Exec(ctx,
			`UPDATE students SET placement_status = $1, placed_company = $2, package_lpa = $3, updated_at = NOW()
			 WHERE id = $4 AND placement_status <> $1`,
			models.PlacementPlaced, app.CompanyName, packageLPA, app.StudentID)
		if err != nil {
			return fmt.Errorf("error placing student: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrStudentAlreadyPlaced
		}

		_, err = tx.Exec(ctx,
			`UPDATE companies SET total_hires = total_hires + 1, current_year_hires = current_year_hires + 1, updated_at = NOW()
			 WHERE id = $1`, app.CompanyID)
		if err != nil {
			return fmt.Errorf("error updating company hires: %w", err)
		}

		logger.Info().Int64("applicationID", app.ID).Int64("studentID", app.StudentID).
			Int64("companyID", app.CompanyID).Float64("package", packageLPA).Msg("Student placed")
		return nil
	})
}

// Withdraw deletes an application that is still in the applied status
func (r *ApplicationRepository) Withdraw(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND status = $2`, id, models.ApplicationApplied)
	if err != nil {
		return fmt.Errorf("error deleting application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApplicationNotWithdrawable
	}
	return nil
}
