package services

import (
	"context"

	"go.uber.org/zap"

	"loan-broker/internal/authz"
	"loan-broker/internal/dto"
	"loan-broker/internal/repositories"
	"loan-broker/pkg/types"
)

type CompanyServiceInterface interface {
	GetCompanies(ctx context.Context, filter types.Filter) ([]dto.CompanyDTO, uint64, error)
	FindCompany(ctx context.Context, id uint64) (*dto.CompanyDTO, error)
}

type CompanyService struct {
	*BaseService
	repo   repositories.CompanyRepositoryInterface
	logger *zap.Logger
}

func NewCompanyService(base *BaseService, repo repositories.CompanyRepositoryInterface, logger *zap.Logger) CompanyServiceInterface {
	return &CompanyService{BaseService: base, repo: repo, logger: logger}
}

func (s *CompanyService) GetCompanies(ctx context.Context, filter types.Filter) ([]dto.CompanyDTO, uint64, error) {
	actor, err := s.authorize(ctx, authz.EntityCompany, authz.OpList)
	if err != nil {
		return nil, 0, err
	}

	companies, total, err := s.repo.GetCompanies(ctx, s.scope(actor, authz.EntityCompany), filter)
	if err != nil {
		s.logger.Error("Не удалось получить список компаний", zap.Error(err))
		return nil, 0, err
	}

	res := make([]dto.CompanyDTO, 0, len(companies))
	for i := range companies {
		res = append(res, *companyEntityToDTO(&companies[i]))
	}
	return res, total, nil
}

func (s *CompanyService) FindCompany(ctx context.Context, id uint64) (*dto.CompanyDTO, error) {
	actor, err := s.authorize(ctx, authz.EntityCompany, authz.OpRetrieve)
	if err != nil {
		return nil, err
	}

	company, err := s.repo.FindCompany(ctx, s.scope(actor, authz.EntityCompany), id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeObject(actor, authz.EntityCompany, authz.OpRetrieve, company); err != nil {
		return nil, err
	}
	return companyEntityToDTO(company), nil
}
