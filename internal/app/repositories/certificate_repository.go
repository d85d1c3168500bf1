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

// ICertificateRepository defines the certificate data operations services depend on
type ICertificateRepository interface {
	List(ctx context.Context, studentID *int64) ([]*models.Certificate, error)
	GetByID(ctx context.Context, id int64) (*models.Certificate, error)
	GetByHash(ctx context.Context, hash string) (*models.Certificate, error)
	Create(ctx context.Context, cert *models.Certificate) error
	Delete(ctx context.Context, id int64) error
	SetStage(ctx context.Context, id int64, stage string) error
	MarkIssued(ctx context.Context, id int64, hash string, blockNumber int64, issuedAt time.Time) error
}

// CertificateRepository handles the 'certificates' table
type CertificateRepository struct {
	db *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository
func NewCertificateRepository(db *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{db: db}
}

var certificateColumns = []string{
	"ce.id", "ce.student_id", "s.name", "ce.title", "ce.issuer", "ce.issue_date", "ce.verified",
	"ce.blockchain_hash", "ce.block_number", "ce.issue_stage", "ce.issued_at", "ce.created_at", "ce.updated_at",
}

func scanCertificate(row rowScanner) (*models.Certificate, error) {
	var c models.Certificate
	err := row.Scan(&c.ID, &c.StudentID, &c.StudentName, &c.Title, &c.Issuer, &c.IssueDate, &c.Verified,
		&c.BlockchainHash, &c.BlockNumber, &c.IssueStage, &c.IssuedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func certificateSelect() squirrel.SelectBuilder {
	return psql.Select(certificateColumns...).From("certificates ce").Join("students s ON s.id = ce.student_id")
}

func (r *CertificateRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Certificate, error) {
	sql, args, err := certificateSelect().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get certificate query: %w", err)
	}

	cert, err := scanCertificate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("error retrieving certificate: %w", err)
	}
	return cert, nil
}

// List returns certificates, optionally for a single student
func (r *CertificateRepository) List(ctx context.Context, studentID *int64) ([]*models.Certificate, error) {
	q := certificateSelect().OrderBy("ce.issue_date DESC", "ce.id DESC")
	if studentID != nil {
		q = q.Where(squirrel.Eq{"ce.student_id": *studentID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list certificates query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing certificates: %w", err)
	}
	return collect(rows, scanCertificate)
}

// GetByID retrieves a certificate by ID
func (r *CertificateRepository) GetByID(ctx context.Context, id int64) (*models.Certificate, error) {
	return r.getOne(ctx, squirrel.Eq{"ce.id": id})
}

// GetByHash retrieves a certificate by its ledger transaction hash
func (r *CertificateRepository) GetByHash(ctx context.Context, hash string) (*models.Certificate, error) {
	return r.getOne(ctx, squirrel.Eq{"LOWER(ce.blockchain_hash)": hash})
}

// Create inserts an unverified certificate
func (r *CertificateRepository) Create(ctx context.Context, c *models.Certificate) error {
	now := time.Now()
	sql, args, err := psql.Insert("certificates").
		Columns("student_id", "title", "issuer", "issue_date", "verified", "created_at", "updated_at").
		Values(c.StudentID, c.Title, c.Issuer, c.IssueDate, false, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create certificate query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("error creating certificate: %w", err)
	}
	c.Verified = false
	return nil
}

// Delete removes a certificate
func (r *CertificateRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM certificates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCertificateNotFound
	}
	return nil
}

// SetStage records the current issuance stage
func (r *CertificateRepository) SetStage(ctx context.Context, id int64, stage string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE certificates SET issue_stage = $1, updated_at = NOW() WHERE id = $2`, stage, id)
	if err != nil {
		return fmt.Errorf("error updating certificate stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCertificateNotFound
	}
	return nil
}

// MarkIssued stores the ledger receipt and flags the certificate verified
func (r *CertificateRepository) MarkIssued(ctx context.Context, id int64, hash string, blockNumber int64, issuedAt time.Time) error {
	sql, args, err := psql.Update("certificates").
		SetMap(map[string]interface{}{
			"verified":        true,
			"blockchain_hash": hash,
			"block_number":    blockNumber,
			"issue_stage":     "confirmed",
			"issued_at":       issuedAt,
			"updated_at":      squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark issued query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "certificates_blockchain_hash_key") {
			return apperrors.ErrCertificateAlreadyIssued
		}
		return fmt.Errorf("error marking certificate issued: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCertificateNotFound
	}
	return nil
}
