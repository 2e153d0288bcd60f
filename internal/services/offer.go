package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"loan-broker/internal/authz"
	"loan-broker/internal/dto"
	"loan-broker/internal/entities"
	"loan-broker/internal/repositories"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/types"
)

type OfferServiceInterface interface {
	GetOffers(ctx context.Context, filter types.Filter) ([]dto.OfferDTO, uint64, error)
	FindOffer(ctx context.Context, id uint64) (*dto.OfferDTO, error)

	// Административные операции, только для суперпользователя.
	CreateOffer(ctx context.Context, payload dto.CreateOfferDTO) (*dto.OfferDTO, error)
	UpdateOffer(ctx context.Context, id uint64, payload dto.UpdateOfferDTO) (*dto.OfferDTO, error)
	DeleteOffer(ctx context.Context, id uint64) error
}

type OfferService struct {
	*BaseService
	repo        repositories.OfferRepositoryInterface
	companyRepo repositories.CompanyRepositoryInterface
	logger      *zap.Logger
}

func NewOfferService(
	base *BaseService,
	repo repositories.OfferRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	logger *zap.Logger,
) OfferServiceInterface {
	return &OfferService{BaseService: base, repo: repo, companyRepo: companyRepo, logger: logger}
}

func offerEntityToDTO(o *entities.Offer) *dto.OfferDTO {
	return &dto.OfferDTO{
		ID:            o.ID,
		Name:          o.Name,
		Company:       o.CompanyID,
		RotationStart: o.RotationStart,
		RotationEnd:   o.RotationEnd,
		Kind:          string(o.Kind),
		MinScore:      o.MinScore,
		MaxScore:      o.MaxScore,
	}
}

func (s *OfferService) GetOffers(ctx context.Context, filter types.Filter) ([]dto.OfferDTO, uint64, error) {
	actor, err := s.authorize(ctx, authz.EntityOffer, authz.OpList)
	if err != nil {
		return nil, 0, err
	}

	offers, total, err := s.repo.GetOffers(ctx, s.scope(actor, authz.EntityOffer), filter)
	if err != nil {
		s.logger.Error("Не удалось получить список предложений", zap.Error(err))
		return nil, 0, err
	}

	res := make([]dto.OfferDTO, 0, len(offers))
	for i := range offers {
		res = append(res, *offerEntityToDTO(&offers[i]))
	}
	return res, total, nil
}

func (s *OfferService) FindOffer(ctx context.Context, id uint64) (*dto.OfferDTO, error) {
	actor, err := s.authorize(ctx, authz.EntityOffer, authz.OpRetrieve)
	if err != nil {
		return nil, err
	}
	offer, err := s.repo.FindOffer(ctx, s.scope(actor, authz.EntityOffer), id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeObject(actor, authz.EntityOffer, authz.OpRetrieve, offer); err != nil {
		return nil, err
	}
	return offerEntityToDTO(offer), nil
}

func (s *OfferService) requireSuperuser(ctx context.Context) (*authz.Actor, error) {
	actor, err := authz.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperuser {
		s.logger.Warn("Администрирование предложений без прав суперпользователя", zap.Uint64("userID", actor.UserID))
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}

// validateOffer: владелец - кредитная организация, границы ротации и баллов не перевёрнуты.
func (s *OfferService) validateOffer(ctx context.Context, offer *entities.Offer) error {
	details := make(map[string]string)

	company, err := s.companyRepo.FindCompany(ctx, nil, offer.CompanyID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		details["company"] = "компания не найдена"
	case err != nil:
		return err
	case !company.IsCreditOrganization():
		details["company"] = "предложение может принадлежать только кредитной организации"
	}

	if !offer.Kind.IsValid() {
		details["kind"] = "неизвестный тип предложения"
	}
	if offer.RotationEnd.Before(offer.RotationStart) {
		details["rotation_end"] = "окончание ротации раньше начала"
	}
	if offer.MinScore > offer.MaxScore {
		details["max_score"] = "максимальный балл меньше минимального"
	}

	if len(details) > 0 {
		return apperrors.NewValidationError(details)
	}
	return nil
}

func (s *OfferService) CreateOffer(ctx context.Context, payload dto.CreateOfferDTO) (*dto.OfferDTO, error) {
	actor, err := s.requireSuperuser(ctx)
	if err != nil {
		return nil, err
	}

	offer := &entities.Offer{
		Name:          payload.Name,
		CompanyID:     payload.CompanyID,
		RotationStart: payload.RotationStart,
		RotationEnd:   payload.RotationEnd,
		Kind:          entities.OfferKind(payload.Kind),
		MinScore:      *payload.MinScore,
		MaxScore:      *payload.MaxScore,
	}
	if err := s.validateOffer(ctx, offer); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateOffer(ctx, offer)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Предложение создано", zap.Uint64("offerID", created.ID), zap.Uint64("userID", actor.UserID))
	return offerEntityToDTO(created), nil
}

func (s *OfferService) UpdateOffer(ctx context.Context, id uint64, payload dto.UpdateOfferDTO) (*dto.OfferDTO, error) {
	actor, err := s.requireSuperuser(ctx)
	if err != nil {
		return nil, err
	}

	offer, err := s.repo.FindOffer(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		offer.Name = *payload.Name
	}
	if payload.CompanyID != nil {
		offer.CompanyID = *payload.CompanyID
	}
	if payload.RotationStart != nil {
		offer.RotationStart = *payload.RotationStart
	}
	if payload.RotationEnd != nil {
		offer.RotationEnd = *payload.RotationEnd
	}
	if payload.Kind != nil {
		offer.Kind = entities.OfferKind(*payload.Kind)
	}
	if payload.MinScore != nil {
		offer.MinScore = *payload.MinScore
	}
	if payload.MaxScore != nil {
		offer.MaxScore = *payload.MaxScore
	}
	if err := s.validateOffer(ctx, offer); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateOffer(ctx, offer)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Предложение обновлено", zap.Uint64("offerID", id), zap.Uint64("userID", actor.UserID))
	return offerEntityToDTO(updated), nil
}

func (s *OfferService) DeleteOffer(ctx context.Context, id uint64) error {
	actor, err := s.requireSuperuser(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteOffer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Предложение удалено", zap.Uint64("offerID", id), zap.Uint64("userID", actor.UserID))
	return nil
}
