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

// IVerificationTokenRepository stores email verification tokens
type IVerificationTokenRepository interface {
	CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetTokenInfo(ctx context.Context, token string) (int64, time.Time, error)
	DeleteUserTokens(ctx context.Context, userID int64) error
}

type VerificationTokenRepository struct {
	db *pgxpool.Pool
}

func NewVerificationTokenRepository(db *pgxpool.Pool) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

func (r *VerificationTokenRepository) exec(ctx context.Context, b squirrel.Sqlizer, what string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", what, err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (r *VerificationTokenRepository) CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	return r.exec(ctx, psql.Insert("verification_tokens").
		Columns("user_id", "token", "expires_at").
		Values(userID, token, expiresAt),
		"insert verification token")
}

// GetTokenInfo returns the owner and expiry of token. Unknown tokens map to
// ErrInvalidEmailToken; expiry is left to the caller.
func (r *VerificationTokenRepository) GetTokenInfo(ctx context.Context, token string) (int64, time.Time, error) {
	query, args, err := psql.Select("user_id", "expires_at").
		From("verification_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("build select verification token: %w", err)
	}

	var (
		userID    int64
		expiresAt time.Time
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(&userID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, time.Time{}, apperrors.ErrInvalidEmailToken
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("select verification token: %w", err)
	}
	return userID, expiresAt, nil
}

// DeleteUserTokens drops every outstanding verification token of userID,
// both after a successful verification and before a resend.
func (r *VerificationTokenRepository) DeleteUserTokens(ctx context.Context, userID int64) error {
	return r.exec(ctx, psql.Delete("verification_tokens").Where(squirrel.Eq{"user_id": userID}),
		"delete verification tokens")
}
