package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/helpers"
	"github.com/yigit/placementhub/internal/pkg/search"
)

// CompanyService manages recruiting companies
type CompanyService interface {
	List(ctx context.Context, opts search.Options) (search.Page[*models.Company], error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	GetOwn(ctx context.Context, actor auth.Actor) (*models.Company, error)
	Create(ctx context.Context, req *dto.CreateCompanyRequest) (*models.Company, error)
	Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateCompanyRequest) (*models.Company, error)
	Delete(ctx context.Context, id int64) error
}

type companyService struct {
	companyRepo repositories.ICompanyRepository
	authz       *auth.AuthorizationService
	logger      zerolog.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo repositories.ICompanyRepository, authz *auth.AuthorizationService, logger zerolog.Logger) CompanyService {
	return &companyService{companyRepo: companyRepo, authz: authz, logger: logger}
}

func (s *companyService) List(ctx context.Context, opts search.Options) (search.Page[*models.Company], error) {
	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return search.Page[*models.Company]{}, err
	}
	return search.Run(companies, opts), nil
}

func (s *companyService) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return s.companyRepo.GetByID(ctx, id)
}

func (s *companyService) GetOwn(ctx context.Context, actor auth.Actor) (*models.Company, error) {
	return s.authz.CompanyFor(ctx, actor)
}

func (s *companyService) Create(ctx context.Context, req *dto.CreateCompanyRequest) (*models.Company, error) {
	status := models.CompanyStatus(req.Status)
	if status == "" {
		status = models.CompanyActive
	}
	company := &models.Company{
		Name:         strings.TrimSpace(req.Name),
		Industry:     strings.TrimSpace(req.Industry),
		Description:  helpers.NilIfEmpty(strings.TrimSpace(req.Description)),
		Website:      helpers.NilIfEmpty(strings.TrimSpace(req.Website)),
		ContactEmail: normalizeEmail(req.ContactEmail),
		Locations:    cleanList(req.Locations),
		Status:       status,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("companyID", company.ID).Str("name", company.Name).Msg("Company created")
	return company, nil
}

// Update edits a company. Recruiters may edit their own company but not its status.
func (s *companyService) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateCompanyRequest) (*models.Company, error) {
	if err := s.authz.ValidateCompanyOwnership(ctx, actor, id); err != nil {
		return nil, err
	}
	if req.Status != nil && !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only the placement cell can change company status")
	}

	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.Industry != nil {
		company.Industry = strings.TrimSpace(*req.Industry)
	}
	if req.Description != nil {
		company.Description = helpers.NilIfEmpty(strings.TrimSpace(*req.Description))
	}
	if req.Website != nil {
		company.Website = helpers.NilIfEmpty(strings.TrimSpace(*req.Website))
	}
	if req.ContactEmail != nil {
		company.ContactEmail = normalizeEmail(*req.ContactEmail)
	}
	if req.Locations != nil {
		company.Locations = cleanList(*req.Locations)
	}
	if req.Status != nil {
		company.Status = models.CompanyStatus(*req.Status)
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, id int64) error {
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("companyID", id).Msg("Company deleted")
	return nil
}
