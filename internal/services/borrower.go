package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"loan-broker/internal/authz"
	"loan-broker/internal/dto"
	"loan-broker/internal/entities"
	"loan-broker/internal/repositories"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/types"
	"loan-broker/pkg/validation"
)

type BorrowerServiceInterface interface {
	GetBorrowers(ctx context.Context, filter types.Filter) ([]dto.BorrowerDTO, uint64, error)
	FindBorrower(ctx context.Context, id uint64) (*dto.BorrowerDTO, error)
	CreateBorrower(ctx context.Context, payload dto.CreateBorrowerDTO) (*dto.BorrowerDTO, error)
	UpdateBorrower(ctx context.Context, id uint64, payload dto.UpdateBorrowerDTO) (*dto.BorrowerDTO, error)
	DeleteBorrower(ctx context.Context, id uint64) error
}

type BorrowerService struct {
	*BaseService
	repo   repositories.BorrowerRepositoryInterface
	logger *zap.Logger
}

func NewBorrowerService(base *BaseService, repo repositories.BorrowerRepositoryInterface, logger *zap.Logger) BorrowerServiceInterface {
	return &BorrowerService{BaseService: base, repo: repo, logger: logger}
}

func borrowerEntityToDTO(b *entities.Borrower) *dto.BorrowerDTO {
	if b == nil {
		return nil
	}
	return &dto.BorrowerDTO{
		ID:             b.ID,
		LastName:       b.LastName,
		FirstName:      b.FirstName,
		MiddleName:     b.MiddleName,
		BirthDate:      b.BirthDate.Format(validation.DateLayout),
		PhoneNumber:    b.PhoneNumber,
		PassportNumber: b.PassportNumber,
		Score:          b.Score,
		Company:        b.CompanyID,
		Created:        b.CreatedAt,
		Modified:       b.ModifiedAt,
	}
}

func parseBirthDate(value string) (time.Time, error) {
	t, err := time.Parse(validation.DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewFieldError("birth_date", "ожидается дата в формате ГГГГ-ММ-ДД")
	}
	return t, nil
}

func (s *BorrowerService) GetBorrowers(ctx context.Context, filter types.Filter) ([]dto.BorrowerDTO, uint64, error) {
	actor, err := s.authorize(ctx, authz.EntityBorrower, authz.OpList)
	if err != nil {
		return nil, 0, err
	}

	borrowers, total, err := s.repo.GetBorrowers(ctx, s.scope(actor, authz.EntityBorrower), filter)
	if err != nil {
		s.logger.Error("Не удалось получить список анкет", zap.Error(err))
		return nil, 0, err
	}

	res := make([]dto.BorrowerDTO, 0, len(borrowers))
	for i := range borrowers {
		res = append(res, *borrowerEntityToDTO(&borrowers[i]))
	}
	return res, total, nil
}

func (s *BorrowerService) FindBorrower(ctx context.Context, id uint64) (*dto.BorrowerDTO, error) {
	actor, err := s.authorize(ctx, authz.EntityBorrower, authz.OpRetrieve)
	if err != nil {
		return nil, err
	}
	borrower, err := s.findForObjectOp(ctx, actor, authz.OpRetrieve, id)
	if err != nil {
		return nil, err
	}
	return borrowerEntityToDTO(borrower), nil
}

// findForObjectOp: запись вне области видимости - ErrNotFound, запрет операции над видимой записью - ErrForbidden.
func (s *BorrowerService) findForObjectOp(ctx context.Context, actor *authz.Actor, op authz.Operation, id uint64) (*entities.Borrower, error) {
	borrower, err := s.repo.FindBorrower(ctx, s.scope(actor, authz.EntityBorrower), id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeObject(actor, authz.EntityBorrower, op, borrower); err != nil {
		return nil, err
	}
	return borrower, nil
}

func (s *BorrowerService) CreateBorrower(ctx context.Context, payload dto.CreateBorrowerDTO) (*dto.BorrowerDTO, error) {
	actor, err := s.authorize(ctx, authz.EntityBorrower, authz.OpCreate)
	if err != nil {
		return nil, err
	}

	birthDate, err := parseBirthDate(payload.BirthDate)
	if err != nil {
		return nil, err
	}

	// компанию выбирает только суперпользователь, остальным подставляется своя
	var companyID uint64
	if actor.IsSuperuser {
		if !payload.CompanyID.Valid || payload.CompanyID.Uint64 == 0 {
			return nil, apperrors.NewFieldError("company", "обязательное поле")
		}
		companyID = payload.CompanyID.Uint64
	} else {
		companyID = actor.CompanyID()
	}

	borrower := &entities.Borrower{
		LastName:       payload.LastName,
		FirstName:      payload.FirstName,
		MiddleName:     payload.MiddleName,
		BirthDate:      birthDate,
		PhoneNumber:    payload.PhoneNumber,
		PassportNumber: payload.PassportNumber,
		Score:          *payload.Score,
		CompanyID:      companyID,
	}

	created, err := s.repo.CreateBorrower(ctx, borrower)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Анкета создана",
		zap.Uint64("borrowerID", created.ID),
		zap.Uint64("companyID", created.CompanyID),
		zap.Uint64("userID", actor.UserID))
	return borrowerEntityToDTO(created), nil
}

func (s *BorrowerService) UpdateBorrower(ctx context.Context, id uint64, payload dto.UpdateBorrowerDTO) (*dto.BorrowerDTO, error) {
	actor, err := s.authorize(ctx, authz.EntityBorrower, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	borrower, err := s.findForObjectOp(ctx, actor, authz.OpUpdate, id)
	if err != nil {
		return nil, err
	}

	if payload.LastName != nil {
		borrower.LastName = *payload.LastName
	}
	if payload.FirstName != nil {
		borrower.FirstName = *payload.FirstName
	}
	if payload.MiddleName != nil {
		borrower.MiddleName = *payload.MiddleName
	}
	if payload.BirthDate != nil {
		birthDate, err := parseBirthDate(*payload.BirthDate)
		if err != nil {
			return nil, err
		}
		borrower.BirthDate = birthDate
	}
	if payload.PhoneNumber != nil {
		borrower.PhoneNumber = *payload.PhoneNumber
	}
	if payload.PassportNumber != nil {
		borrower.PassportNumber = *payload.PassportNumber
	}
	if payload.Score != nil {
		borrower.Score = *payload.Score
	}
	if payload.CompanyID.Valid && actor.IsSuperuser {
		borrower.CompanyID = payload.CompanyID.Uint64
	}

	updated, err := s.repo.UpdateBorrower(ctx, borrower)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Анкета обновлена", zap.Uint64("borrowerID", id), zap.Uint64("userID", actor.UserID))
	return borrowerEntityToDTO(updated), nil
}

func (s *BorrowerService) DeleteBorrower(ctx context.Context, id uint64) error {
	actor, err := s.authorize(ctx, authz.EntityBorrower, authz.OpDelete)
	if err != nil {
		return err
	}
	if _, err := s.findForObjectOp(ctx, actor, authz.OpDelete, id); err != nil {
		return err
	}
	if err := s.repo.DeleteBorrower(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Анкета удалена", zap.Uint64("borrowerID", id), zap.Uint64("userID", actor.UserID))
	return nil
}
