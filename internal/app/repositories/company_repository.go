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

// ICompanyRepository defines the company data operations services depend on
type ICompanyRepository interface {
	List(ctx context.Context) ([]*models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Company, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id int64) error
}

// CompanyRepository handles the 'companies' table
type CompanyRepository struct {
	db *pgxpool.Pool
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: db}
}

var companyColumns = []string{
	"id", "user_id", "name", "industry", "description", "website", "contact_email",
	"locations", "status", "total_hires", "current_year_hires", "created_at", "updated_at",
}

func scanCompany(row rowScanner) (*models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Industry, &c.Description, &c.Website, &c.ContactEmail,
		&c.Locations, &c.Status, &c.TotalHires, &c.CurrentYearHires, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Locations = nonNil(c.Locations)
	return &c, nil
}

func insertCompany(ctx context.Context, q querier, c *models.Company) error {
	if c.Status == "" {
		c.Status = models.CompanyActive
	}
	now := time.Now()
	sql, args, err := psql.Insert("companies").
		Columns("user_id", "name", "industry", "description", "website", "contact_email",
			"locations", "status", "created_at", "updated_at").
		Values(c.UserID, c.Name, c.Industry, c.Description, c.Website, c.ContactEmail,
			nonNil(c.Locations), c.Status, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create company query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "companies_name_key") {
			return apperrors.ErrCompanyAlreadyExists
		}
		return fmt.Errorf("error creating company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Company, error) {
	sql, args, err := psql.Select(companyColumns...).From("companies").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get company query: %w", err)
	}

	company, err := scanCompany(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("error retrieving company: %w", err)
	}
	return company, nil
}

// List returns every company ordered by name
func (r *CompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	sql, args, err := psql.Select(companyColumns...).From("companies").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list companies query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing companies: %w", err)
	}
	return collect(rows, scanCompany)
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUserID retrieves the company a recruiter login belongs to
func (r *CompanyRepository) GetByUserID(ctx context.Context, userID int64) (*models.Company, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID})
}

// Create inserts a company
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	return insertCompany(ctx, r.db, company)
}

// Update writes every mutable column of a company
func (r *CompanyRepository) Update(ctx context.Context, c *models.Company) error {
	sql, args, err := psql.Update("companies").
		SetMap(map[string]interface{}{
			"name":          c.Name,
			"industry":      c.Industry,
			"description":   c.Description,
			"website":       c.Website,
			"contact_email": c.ContactEmail,
			"locations":     nonNil(c.Locations),
			"status":        c.Status,
			"updated_at":    squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update company query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrCompanyNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, "companies_name_key") {
			return apperrors.ErrCompanyAlreadyExists
		}
		return fmt.Errorf("error updating company: %w", err)
	}
	return nil
}

// Delete removes a company that has no job postings
func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCompanyHasJobs
		}
		return fmt.Errorf("error deleting company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}
