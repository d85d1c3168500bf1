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

// InterviewFilter scopes interview listings by owner
type InterviewFilter struct {
	StudentID *int64
	CompanyID *int64
	JobID     *int64
}

// IInterviewRepository defines the interview data operations services depend on
type IInterviewRepository interface {
	List(ctx context.Context, filter InterviewFilter) ([]*models.Interview, error)
	GetByID(ctx context.Context, id int64) (*models.Interview, error)
	Create(ctx context.Context, iv *models.Interview, dailyCapacity int) error
	Update(ctx context.Context, iv *models.Interview) error
	Reschedule(ctx context.Context, iv *models.Interview, dailyCapacity int) error
	CountForDay(ctx context.Context, jobID int64, day time.Time) (int, error)
}

// InterviewRepository handles the 'interviews' table
type InterviewRepository struct {
	db *pgxpool.Pool
}

// NewInterviewRepository creates a new InterviewRepository
func NewInterviewRepository(db *pgxpool.Pool) *InterviewRepository {
	return &InterviewRepository{db: db}
}

var interviewColumns = []string{
	"i.id", "i.application_id", "i.job_id", "i.scheduled_at", "i.duration_minutes", "i.mode", "i.location",
	"i.status", "i.notes", "a.student_id", "s.name", "j.title", "c.id", "c.name", "i.created_at", "i.updated_at",
}

func scanInterview(row rowScanner) (*models.Interview, error) {
	var iv models.Interview
	err := row.Scan(&iv.ID, &iv.ApplicationID, &iv.JobID, &iv.ScheduledAt, &iv.DurationMinutes, &iv.Mode, &iv.Location,
		&iv.Status, &iv.Notes, &iv.StudentID, &iv.StudentName, &iv.JobTitle, &iv.CompanyID, &iv.CompanyName,
		&iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func interviewSelect() squirrel.SelectBuilder {
	return psql.Select(interviewColumns...).
		From("interviews i").
		Join("applications a ON a.id = i.application_id").
		Join("students s ON s.id = a.student_id").
		Join("jobs j ON j.id = i.job_id").
		Join("companies c ON c.id = j.company_id")
}

// List returns interviews matching filter ordered by slot
func (r *InterviewRepository) List(ctx context.Context, filter InterviewFilter) ([]*models.Interview, error) {
	q := interviewSelect().OrderBy("i.scheduled_at ASC")
	if filter.StudentID != nil {
		q = q.Where(squirrel.Eq{"a.student_id": *filter.StudentID})
	}
	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"j.company_id": *filter.CompanyID})
	}
	if filter.JobID != nil {
		q = q.Where(squirrel.Eq{"i.job_id": *filter.JobID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list interviews query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing interviews: %w", err)
	}
	return collect(rows, scanInterview)
}

// GetByID retrieves an interview by ID
func (r *InterviewRepository) GetByID(ctx context.Context, id int64) (*models.Interview, error) {
	return getInterview(ctx, r.db, id)
}

func getInterview(ctx context.Context, q querier, id int64) (*models.Interview, error) {
	sql, args, err := interviewSelect().Where(squirrel.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get interview query: %w", err)
	}

	iv, err := scanInterview(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInterviewNotFound
		}
		return nil, fmt.Errorf("error retrieving interview: %w", err)
	}
	return iv, nil
}

func countForDay(ctx context.Context, q querier, jobID int64, day time.Time, excludeID int64) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM interviews
		 WHERE job_id = $1 AND status = $2 AND scheduled_at >= $3 AND scheduled_at < $4 AND id <> $5`,
		jobID, models.InterviewScheduled, start, end, excludeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting interviews: %w", err)
	}
	return n, nil
}

// CountForDay counts scheduled interviews for a job on the calendar day of day
func (r *InterviewRepository) CountForDay(ctx context.Context, jobID int64, day time.Time) (int, error) {
	return countForDay(ctx, r.db, jobID, day, 0)
}

// Create books an interview slot. The job row is locked so that concurrent
// bookings for the same day cannot exceed dailyCapacity.
func (r *InterviewRepository) Create(ctx context.Context, iv *models.Interview, dailyCapacity int) error {
	if iv.Status == "" {
		iv.Status = models.InterviewScheduled
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT id FROM jobs WHERE id = $1 FOR UPDATE`, iv.JobID); err != nil {
			return fmt.Errorf("error locking job: %w", err)
		}

		n, err := countForDay(ctx, tx, iv.JobID, iv.ScheduledAt, 0)
		if err != nil {
			return err
		}
		if n >= dailyCapacity {
			return apperrors.ErrSlotFull
		}

		now := time.Now()
		sql, args, err := psql.Insert("interviews").
			Columns("application_id", "job_id", "scheduled_at", "duration_minutes", "mode", "location",
				"status", "notes", "created_at", "updated_at").
			Values(iv.ApplicationID, iv.JobID, iv.ScheduledAt, iv.DurationMinutes, iv.Mode, iv.Location,
				iv.Status, iv.Notes, now, now).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create interview query: %w", err)
		}

		var id int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrApplicationNotFound
			}
			return fmt.Errorf("error creating interview: %w", err)
		}

		created, err := getInterview(ctx, tx, id)
		if err != nil {
			return err
		}
		*iv = *created
		return nil
	})
}

// Update writes the mutable columns of an interview
func (r *InterviewRepository) Update(ctx context.Context, iv *models.Interview) error {
	return updateInterview(ctx, r.db, iv)
}

// Reschedule writes iv after re-checking its new day's capacity under the same
// job row lock Create takes, so a move cannot overbook the target day.
func (r *InterviewRepository) Reschedule(ctx context.Context, iv *models.Interview, dailyCapacity int) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT id FROM jobs WHERE id = $1 FOR UPDATE`, iv.JobID); err != nil {
			return fmt.Errorf("error locking job: %w", err)
		}

		n, err := countForDay(ctx, tx, iv.JobID, iv.ScheduledAt, iv.ID)
		if err != nil {
			return err
		}
		if n >= dailyCapacity {
			return apperrors.ErrSlotFull
		}
		return updateInterview(ctx, tx, iv)
	})
}

func updateInterview(ctx context.Context, q querier, iv *models.Interview) error {
	sql, args, err := psql.Update("interviews").
		SetMap(map[string]interface{}{
			"scheduled_at":     iv.ScheduledAt,
			"duration_minutes": iv.DurationMinutes,
			"mode":             iv.Mode,
			"location":         iv.Location,
			"status":           iv.Status,
			"notes":            iv.Notes,
			"updated_at":       squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": iv.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update interview query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&iv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrInterviewNotFound
		}
		return fmt.Errorf("error updating interview: %w", err)
	}
	return nil
}
