package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the same query
// helpers run inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// psql is the shared statement builder using $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository              *UserRepository
	TokenRepository             *TokenRepository
	VerificationTokenRepository *VerificationTokenRepository
	PasswordResetRepository     *PasswordResetTokenRepository
	StudentRepository           *StudentRepository
	CompanyRepository           *CompanyRepository
	JobRepository               *JobRepository
	ApplicationRepository       *ApplicationRepository
	CertificateRepository       *CertificateRepository
	InterviewRepository         *InterviewRepository
	StatsRepository             *StatsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:              NewUserRepository(db),
		TokenRepository:             NewTokenRepository(db),
		VerificationTokenRepository: NewVerificationTokenRepository(db),
		PasswordResetRepository:     NewPasswordResetTokenRepository(db),
		StudentRepository:           NewStudentRepository(db),
		CompanyRepository:           NewCompanyRepository(db),
		JobRepository:               NewJobRepository(db),
		ApplicationRepository:       NewApplicationRepository(db),
		CertificateRepository:       NewCertificateRepository(db),
		InterviewRepository:         NewInterviewRepository(db),
		StatsRepository:             NewStatsRepository(db),
	}
}

// collect drains rows through scan.
func collect[T any](rows pgx.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
