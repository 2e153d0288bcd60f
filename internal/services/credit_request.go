package services

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"loan-broker/internal/activity"
	"loan-broker/internal/authz"
	"loan-broker/internal/dto"
	"loan-broker/internal/entities"
	"loan-broker/internal/repositories"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/types"
	"loan-broker/pkg/utils"
)

type CreditRequestServiceInterface interface {
	GetCreditRequests(ctx context.Context, filter types.Filter) ([]dto.CreditRequestDTO, uint64, error)
	FindCreditRequest(ctx context.Context, id uint64) (*dto.CreditRequestDTO, error)
	// CreateCreditRequest проверяет ввод и запускает подбор, не дожидаясь его.
	// Возвращает идентификатор задания подбора.
	CreateCreditRequest(ctx context.Context, payload dto.CreateCreditRequestDTO) (string, error)
	UpdateCreditRequest(ctx context.Context, id uint64, payload dto.UpdateCreditRequestDTO, partial bool) (*dto.CreditRequestDTO, error)
	DeleteCreditRequest(ctx context.Context, id uint64) error
}

type CreditRequestService struct {
	*BaseService
	repo         repositories.CreditRequestRepositoryInterface
	borrowerRepo repositories.BorrowerRepositoryInterface
	offerRepo    repositories.OfferRepositoryInterface
	lifecycle    *CreditRequestLifecycle
	dispatcher   MatchDispatcher
	logger       *zap.Logger
}

func NewCreditRequestService(
	base *BaseService,
	repo repositories.CreditRequestRepositoryInterface,
	borrowerRepo repositories.BorrowerRepositoryInterface,
	offerRepo repositories.OfferRepositoryInterface,
	lifecycle *CreditRequestLifecycle,
	dispatcher MatchDispatcher,
	logger *zap.Logger,
) CreditRequestServiceInterface {
	return &CreditRequestService{
		BaseService:  base,
		repo:         repo,
		borrowerRepo: borrowerRepo,
		offerRepo:    offerRepo,
		lifecycle:    lifecycle,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

func creditRequestEntityToDTO(cr *entities.CreditRequest) *dto.CreditRequestDTO {
	return &dto.CreditRequestDTO{
		ID:             cr.ID,
		Created:        cr.CreatedAt,
		SentDate:       cr.SentDate,
		Status:         string(cr.Status),
		Borrower:       cr.BorrowerID,
		BorrowerDetail: borrowerEntityToDTO(cr.Borrower),
		Offer:          cr.OfferID,
	}
}

func (s *CreditRequestService) GetCreditRequests(ctx context.Context, filter types.Filter) ([]dto.CreditRequestDTO, uint64, error) {
	actor, err := s.authorize(ctx, authz.EntityCreditRequest, authz.OpList)
	if err != nil {
		return nil, 0, err
	}

	requests, total, err := s.repo.GetCreditRequests(ctx, s.scope(actor, authz.EntityCreditRequest), filter)
	if err != nil {
		s.logger.Error("Не удалось получить список заявок", zap.Error(err))
		return nil, 0, err
	}

	res := make([]dto.CreditRequestDTO, 0, len(requests))
	for i := range requests {
		res = append(res, *creditRequestEntityToDTO(&requests[i]))
	}
	return res, total, nil
}

func (s *CreditRequestService) findForObjectOp(ctx context.Context, actor *authz.Actor, op authz.Operation, id uint64) (*entities.CreditRequest, error) {
	cr, err := s.repo.FindCreditRequest(ctx, s.scope(actor, authz.EntityCreditRequest), id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeObject(actor, authz.EntityCreditRequest, op, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

func (s *CreditRequestService) FindCreditRequest(ctx context.Context, id uint64) (*dto.CreditRequestDTO, error) {
	actor, err := s.authorize(ctx, authz.EntityCreditRequest, authz.OpRetrieve)
	if err != nil {
		return nil, err
	}
	cr, err := s.findForObjectOp(ctx, actor, authz.OpRetrieve, id)
	if err != nil {
		return nil, err
	}
	return creditRequestEntityToDTO(cr), nil
}

// checkBorrower: не суперпользователь ссылается только на свои анкеты.
func (s *CreditRequestService) checkBorrower(ctx context.Context, actor *authz.Actor, borrowerID uint64) error {
	var scope sq.Sqlizer
	if !actor.IsSuperuser {
		scope = authz.Scope(actor, authz.EntityBorrower, s.clock())
	}
	_, err := s.borrowerRepo.FindBorrower(ctx, scope, borrowerID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewFieldError("borrower", "анкета не найдена")
	}
	return err
}

// checkOffer: явно указанное предложение должно быть активно сейчас.
func (s *CreditRequestService) checkOffer(ctx context.Context, offerID uint64) error {
	_, err := s.offerRepo.FindOffer(ctx, activity.ActiveAt(authz.OfferAlias, s.clock()), offerID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewFieldError("offer", "предложение не найдено или не активно")
	}
	return err
}

func (s *CreditRequestService) CreateCreditRequest(ctx context.Context, payload dto.CreateCreditRequestDTO) (string, error) {
	actor, err := s.authorize(ctx, authz.EntityCreditRequest, authz.OpCreate)
	if err != nil {
		return "", err
	}

	if err := s.checkBorrower(ctx, actor, payload.BorrowerID); err != nil {
		return "", err
	}
	var offerID *uint64
	if payload.OfferID.Valid {
		if err := s.checkOffer(ctx, payload.OfferID.Uint64); err != nil {
			return "", err
		}
		offerID = utils.ToPtr(payload.OfferID.Uint64)
	}

	jobID, err := s.dispatcher.Dispatch(ctx, payload.BorrowerID, offerID)
	if err != nil {
		s.logger.Error("Не удалось запустить подбор", zap.Uint64("borrowerID", payload.BorrowerID), zap.Error(err))
		return "", err
	}
	s.logger.Info("Подбор предложений запущен",
		zap.String("request_id", utils.GetRequestIDFromCtx(ctx)),
		zap.String("jobID", jobID),
		zap.Uint64("borrowerID", payload.BorrowerID),
		zap.Uint64("userID", actor.UserID))
	return jobID, nil
}

func (s *CreditRequestService) UpdateCreditRequest(ctx context.Context, id uint64, payload dto.UpdateCreditRequestDTO, partial bool) (*dto.CreditRequestDTO, error) {
	actor, err := s.authorize(ctx, authz.EntityCreditRequest, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	current, err := s.findForObjectOp(ctx, actor, authz.OpUpdate, id)
	if err != nil {
		return nil, err
	}

	next, err := s.lifecycle.Apply(actor, *current, payload, partial)
	if err != nil {
		return nil, err
	}
	if next.BorrowerID != current.BorrowerID {
		if err := s.checkBorrower(ctx, actor, next.BorrowerID); err != nil {
			return nil, err
		}
	}
	if next.OfferID != current.OfferID {
		if err := s.checkOffer(ctx, next.OfferID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateCreditRequest(ctx, &next)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Заявка обновлена",
		zap.Uint64("creditRequestID", id),
		zap.String("status", string(updated.Status)),
		zap.Uint64("userID", actor.UserID))
	return creditRequestEntityToDTO(updated), nil
}

func (s *CreditRequestService) DeleteCreditRequest(ctx context.Context, id uint64) error {
	actor, err := s.authorize(ctx, authz.EntityCreditRequest, authz.OpDelete)
	if err != nil {
		return err
	}
	if _, err := s.findForObjectOp(ctx, actor, authz.OpDelete, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCreditRequest(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Заявка удалена", zap.Uint64("creditRequestID", id), zap.Uint64("userID", actor.UserID))
	return nil
}
