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

// IStudentRepository defines the student data operations services depend on
type IStudentRepository interface {
	List(ctx context.Context) ([]*models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdateResumeURL(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
}

// StudentRepository handles the 'students' table
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

var studentColumns = []string{
	"s.id", "s.user_id", "s.name", "s.email", "s.phone", "s.roll_number", "s.department",
	"s.cgpa", "s.graduation_year", "s.placement_status", "s.placed_company", "s.package_lpa",
	"s.skills", "s.resume_url", "s.created_at", "s.updated_at",
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Email, &s.Phone, &s.RollNumber, &s.Department,
		&s.CGPA, &s.GraduationYear, &s.PlacementStatus, &s.PlacedCompany, &s.PackageLPA,
		&s.Skills, &s.ResumeURL, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Skills = nonNil(s.Skills)
	return &s, nil
}

func getStudent(ctx context.Context, q querier, where squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).From("students s").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

func insertStudent(ctx context.Context, q querier, s *models.Student) error {
	if s.PlacementStatus == "" {
		s.PlacementStatus = models.PlacementUnplaced
	}
	now := time.Now()
	sql, args, err := psql.Insert("students").
		Columns("user_id", "name", "email", "phone", "roll_number", "department", "cgpa",
			"graduation_year", "placement_status", "placed_company", "package_lpa", "skills",
			"resume_url", "created_at", "updated_at").
		Values(s.UserID, s.Name, s.Email, s.Phone, s.RollNumber, s.Department, s.CGPA,
			s.GraduationYear, s.PlacementStatus, s.PlacedCompany, s.PackageLPA, nonNil(s.Skills),
			s.ResumeURL, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_roll_number_key") {
			return apperrors.ErrRollNumberAlreadyExists
		}
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// List returns every student ordered by roll number
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).From("students s").OrderBy("s.roll_number").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing students")
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return collect(rows, scanStudent)
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return getStudent(ctx, r.db, squirrel.Eq{"s.id": id})
}

// GetByUserID retrieves the student linked to a login
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return getStudent(ctx, r.db, squirrel.Eq{"s.user_id": userID})
}

// Create inserts a student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return insertStudent(ctx, r.db, student)
}

// Update writes every mutable column of a student
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	sql, args, err := psql.Update("students").
		SetMap(map[string]interface{}{
			"name":             s.Name,
			"email":            s.Email,
			"phone":            s.Phone,
			"department":       s.Department,
			"cgpa":             s.CGPA,
			"graduation_year":  s.GraduationYear,
			"placement_status": s.PlacementStatus,
			"placed_company":   s.PlacedCompany,
			"package_lpa":      s.PackageLPA,
			"skills":           nonNil(s.Skills),
			"updated_at":       squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("error updating student: %w", err)
	}
	return nil
}

// UpdateResumeURL stores the uploaded resume location
func (r *StudentRepository) UpdateResumeURL(ctx context.Context, id int64, url string) error {
	tag, err := r.db.Exec(ctx, `UPDATE students SET resume_url = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("error updating resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Delete removes a student and, by cascade, their applications
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}
