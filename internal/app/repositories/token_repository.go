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
	"github.com/yigit/placementhub/internal/pkg/dberrors"
	"github.com/yigit/placementhub/internal/pkg/logger"
)

// RevokedTokenRetention is how long revoked refresh tokens are kept for audit.
const RevokedTokenRetention = 30 * 24 * time.Hour

// ITokenRepository stores refresh tokens
type ITokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

type TokenRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db, now: time.Now}
}

func (r *TokenRepository) CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	query, args, err := psql.Insert("refresh_tokens").
		SetMap(map[string]any{
			"token":      token,
			"user_id":    userID,
			"expires_at": expiresAt,
			"is_revoked": false,
			"created_at": r.now(),
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert refresh token: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	switch {
	case err == nil:
		return nil
	case dberrors.IsDuplicateConstraintError(err, "refresh_tokens_token_key"):
		logger.Warn().Int64("userID", userID).Msg("Refresh token collision")
		return apperrors.ErrTokenInvalid
	default:
		return fmt.Errorf("insert refresh token for user %d: %w", userID, err)
	}
}

// GetTokenByValue resolves a refresh token to its owner. Revoked and expired
// tokens are reported as such rather than as missing.
func (r *TokenRepository) GetTokenByValue(ctx context.Context, token string) (int64, error) {
	query, args, err := psql.Select("user_id", "is_revoked").
		Column(squirrel.Expr("expires_at <= ?", r.now())).
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select refresh token: %w", err)
	}

	var (
		userID           int64
		revoked, expired bool
	)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&userID, &revoked, &expired); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrTokenNotFound
		}
		return 0, fmt.Errorf("select refresh token: %w", err)
	}

	switch {
	case revoked:
		return 0, apperrors.ErrTokenRevoked
	case expired:
		return 0, apperrors.ErrTokenExpired
	}
	return userID, nil
}

func (r *TokenRepository) RevokeToken(ctx context.Context, token string) error {
	n, err := r.revoke(ctx, squirrel.Eq{"token": token})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}

// RevokeAllUserTokens signs the user out everywhere.
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	_, err := r.revoke(ctx, squirrel.Eq{"user_id": userID, "is_revoked": false})
	return err
}

func (r *TokenRepository) revoke(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	query, args, err := psql.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build revoke refresh tokens: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CleanupExpiredTokens deletes expired tokens and revoked ones past the
// retention window, returning how many rows went.
func (r *TokenRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	now := r.now()
	query, args, err := psql.Delete("refresh_tokens").
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": now},
			squirrel.And{
				squirrel.Eq{"is_revoked": true},
				squirrel.Lt{"created_at": now.Add(-RevokedTokenRetention)},
			},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build cleanup refresh tokens: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cleanup refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
