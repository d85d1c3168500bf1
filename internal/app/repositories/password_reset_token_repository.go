package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/placementhub/internal/pkg/apperrors"
)

// IPasswordResetTokenRepository stores single-use password reset tokens
type IPasswordResetTokenRepository interface {
	CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetTokenInfo(ctx context.Context, token string) (userID int64, expiresAt time.Time, used bool, err error)
	MarkTokenAsUsed(ctx context.Context, token string) error
	DeleteUserTokens(ctx context.Context, userID int64) error
}

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	db *pgxpool.Pool
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(db *pgxpool.Pool) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

// CreateToken stores a new password reset token
func (r *PasswordResetTokenRepository) CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	sql, args, err := psql.Insert("password_reset_tokens").
		Columns("user_id", "token", "expires_at").
		Values(userID, token, expiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating password reset token: %w", err)
	}
	return nil
}

// GetTokenInfo returns the owner, expiry and used flag of a token
func (r *PasswordResetTokenRepository) GetTokenInfo(ctx context.Context, token string) (int64, time.Time, bool, error) {
	sql, args, err := psql.Select("user_id", "expires_at", "used").
		From("password_reset_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return 0, time.Time{}, false, fmt.Errorf("error building SQL: %w", err)
	}

	var (
		userID    int64
		expiresAt time.Time
		used      bool
	)
	if err = r.db.QueryRow(ctx, sql, args...).Scan(&userID, &expiresAt, &used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, time.Time{}, false, apperrors.ErrInvalidResetToken
		}
		return 0, time.Time{}, false, fmt.Errorf("error retrieving password reset token: %w", err)
	}
	return userID, expiresAt, used, nil
}

// MarkTokenAsUsed flags a token so it cannot be replayed
func (r *PasswordResetTokenRepository) MarkTokenAsUsed(ctx context.Context, token string) error {
	sql, args, err := psql.Update("password_reset_tokens").
		Set("used", true).
		Where(squirrel.Eq{"token": token, "used": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking token as used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidResetToken
	}
	return nil
}

// DeleteUserTokens removes every reset token of a user
func (r *PasswordResetTokenRepository) DeleteUserTokens(ctx context.Context, userID int64) error {
	sql, args, err := psql.Delete("password_reset_tokens").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting password reset tokens: %w", err)
	}
	return nil
}
