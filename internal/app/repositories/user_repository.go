package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/dberrors"
	"github.com/yigit/placementhub/internal/pkg/logger"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	CreateStudentAccount(ctx context.Context, user *models.User, student *models.Student) error
	CreateCompanyAccount(ctx context.Context, user *models.User, company *models.Company) error
	UpdateLastLogin(ctx context.Context, userID int64) error
	MarkEmailVerified(ctx context.Context, userID int64) error
	IsEmailVerified(ctx context.Context, userID int64) (bool, error)
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error
	List(ctx context.Context) ([]*models.User, error)
	SetActive(ctx context.Context, userID int64, active bool) error
}

// UserRepository handles the 'users' table
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

var userColumns = []string{
	"id", "email", "password", "first_name", "last_name", "role_type",
	"is_active", "email_verified", "last_login_at", "created_at", "updated_at",
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.RoleType,
		&u.IsActive, &u.EmailVerified, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error retrieving user")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))))
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

func insertUser(ctx context.Context, q querier, user *models.User) error {
	now := time.Now()
	sql, args, err := psql.Insert("users").
		Columns("email", "password", "first_name", "last_name", "role_type", "is_active", "email_verified", "created_at", "updated_at").
		Values(strings.ToLower(strings.TrimSpace(user.Email)), user.Password, user.FirstName, user.LastName, user.RoleType, user.IsActive, user.EmailVerified, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return insertUser(ctx, r.db, user)
}

// CreateStudentAccount creates a STUDENT user and links it to the student
// record with the same roll number, creating that record if it is missing.
func (r *UserRepository) CreateStudentAccount(ctx context.Context, user *models.User, student *models.Student) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		student.UserID = &user.ID

		existing, err := getStudent(ctx, tx, squirrel.Eq{"s.roll_number": student.RollNumber})
		switch {
		case err == nil:
			if existing.UserID != nil {
				return apperrors.ErrRollNumberAlreadyExists
			}
			_, err = tx.Exec(ctx, `UPDATE students SET user_id = $1, updated_at = NOW() WHERE id = $2`, user.ID, existing.ID)
			if err != nil {
				return fmt.Errorf("error linking student: %w", err)
			}
			existing.UserID = &user.ID
			*student = *existing
			return nil
		case errors.Is(err, apperrors.ErrStudentNotFound):
			return insertStudent(ctx, tx, student)
		default:
			return err
		}
	})
}

// CreateCompanyAccount creates a COMPANY user together with its company.
func (r *UserRepository) CreateCompanyAccount(ctx context.Context, user *models.User, company *models.Company) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		company.UserID = &user.ID
		return insertCompany(ctx, tx, company)
	})
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// MarkEmailVerified flags the user's email as verified
func (r *UserRepository) MarkEmailVerified(ctx context.Context, userID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error verifying email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// List returns every account, newest first
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return collect(rows, scanUser)
}

// SetActive enables or disables an account
func (r *UserRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	sql, args, err := psql.Update("users").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set active query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, hashedPassword, userID)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// IsEmailVerified reports whether the user has confirmed their email
func (r *UserRepository) IsEmailVerified(ctx context.Context, userID int64) (bool, error) {
	var verified bool
	err := r.db.QueryRow(ctx, `SELECT email_verified FROM users WHERE id = $1`, userID).Scan(&verified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrUserNotFound
		}
		return false, fmt.Errorf("error checking email verification: %w", err)
	}
	return verified, nil
}
