package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"loan-broker/internal/entities"
	"loan-broker/internal/repositories"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/metrics"
)

const (
	DedupeOff  = "off"
	DedupePair = "pair"
)

// DuplicatePolicy отбирает кандидатов перед созданием заявок.
type DuplicatePolicy interface {
	Filter(ctx context.Context, borrowerID uint64, candidates []entities.Offer) ([]entities.Offer, error)
}

// AllowDuplicates создаёт заявку на каждого кандидата, даже если такая пара уже есть.
type AllowDuplicates struct{}

func (AllowDuplicates) Filter(_ context.Context, _ uint64, candidates []entities.Offer) ([]entities.Offer, error) {
	return candidates, nil
}

// SkipExistingPairs пропускает предложения, по которым у анкеты уже есть заявка.
// Два одновременных подбора всё равно могут создать дубль: уникального ограничения нет.
type SkipExistingPairs struct {
	repo repositories.CreditRequestRepositoryInterface
}

func NewSkipExistingPairs(repo repositories.CreditRequestRepositoryInterface) SkipExistingPairs {
	return SkipExistingPairs{repo: repo}
}

func (p SkipExistingPairs) Filter(ctx context.Context, borrowerID uint64, candidates []entities.Offer) ([]entities.Offer, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}
	ids := make([]uint64, 0, len(candidates))
	for _, o := range candidates {
		ids = append(ids, o.ID)
	}
	existing, err := p.repo.ExistingOfferIDs(ctx, borrowerID, ids)
	if err != nil {
		return nil, err
	}

	res := make([]entities.Offer, 0, len(candidates))
	for _, o := range candidates {
		if !existing[o.ID] {
			res = append(res, o)
		}
	}
	return res, nil
}

func NewDuplicatePolicy(name string, repo repositories.CreditRequestRepositoryInterface) (DuplicatePolicy, error) {
	switch name {
	case "", DedupeOff:
		return AllowDuplicates{}, nil
	case DedupePair:
		return NewSkipExistingPairs(repo), nil
	}
	return nil, fmt.Errorf("неизвестный режим дедупликации: %q", name)
}

type MatchingServiceInterface interface {
	// MatchAndCreate создаёт по заявке на каждое подходящее предложение.
	// С offerID кандидат ровно один, активность и диапазон баллов не проверяются.
	// Ненайденные анкета или предложение - ErrResourceAbsent.
	MatchAndCreate(ctx context.Context, borrowerID uint64, offerID *uint64, at time.Time) ([]entities.CreditRequest, error)
}

type MatchingService struct {
	borrowerRepo      repositories.BorrowerRepositoryInterface
	offerRepo         repositories.OfferRepositoryInterface
	creditRequestRepo repositories.CreditRequestRepositoryInterface
	duplicates        DuplicatePolicy
	metrics           *metrics.Metrics
	logger            *zap.Logger
}

func NewMatchingService(
	borrowerRepo repositories.BorrowerRepositoryInterface,
	offerRepo repositories.OfferRepositoryInterface,
	creditRequestRepo repositories.CreditRequestRepositoryInterface,
	duplicates DuplicatePolicy,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) MatchingServiceInterface {
	if duplicates == nil {
		duplicates = AllowDuplicates{}
	}
	return &MatchingService{
		borrowerRepo:      borrowerRepo,
		offerRepo:         offerRepo,
		creditRequestRepo: creditRequestRepo,
		duplicates:        duplicates,
		metrics:           metrics,
		logger:            logger,
	}
}

func (s *MatchingService) MatchAndCreate(ctx context.Context, borrowerID uint64, offerID *uint64, at time.Time) ([]entities.CreditRequest, error) {
	started := time.Now()
	logger := s.logger.With(zap.Uint64("borrowerID", borrowerID))
	if offerID != nil {
		logger = logger.With(zap.Uint64("offerID", *offerID))
	}

	created, err := s.matchAndCreate(ctx, borrowerID, offerID, at)
	switch {
	case errors.Is(err, apperrors.ErrResourceAbsent):
		s.metrics.RecordMatchJob("absent", len(created), time.Since(started))
		logger.Error("Подбор прерван: запись не найдена", zap.Error(err))
	case err != nil:
		s.metrics.RecordMatchJob("error", len(created), time.Since(started))
		logger.Error("Подбор завершился ошибкой", zap.Int("created", len(created)), zap.Error(err))
	default:
		s.metrics.RecordMatchJob("ok", len(created), time.Since(started))
		logger.Info("Подбор завершён", zap.Int("created", len(created)))
	}
	return created, err
}

func (s *MatchingService) matchAndCreate(ctx context.Context, borrowerID uint64, offerID *uint64, at time.Time) ([]entities.CreditRequest, error) {
	borrower, err := s.borrowerRepo.FindBorrower(ctx, nil, borrowerID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: анкета %d", apperrors.ErrResourceAbsent, borrowerID)
	}
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidates(ctx, borrower, offerID, at)
	if err != nil {
		return nil, err
	}
	candidates, err = s.duplicates.Filter(ctx, borrower.ID, candidates)
	if err != nil {
		return nil, err
	}

	// Вставки независимые: при ошибке посередине созданные заявки остаются.
	created := make([]entities.CreditRequest, 0, len(candidates))
	for _, offer := range candidates {
		cr, err := s.creditRequestRepo.CreateCreditRequest(ctx, nil, &entities.CreditRequest{
			Status:     entities.StatusNew,
			BorrowerID: borrower.ID,
			OfferID:    offer.ID,
		})
		if err != nil {
			return created, fmt.Errorf("заявка по предложению %d: %w", offer.ID, err)
		}
		created = append(created, *cr)
	}
	return created, nil
}

func (s *MatchingService) candidates(ctx context.Context, borrower *entities.Borrower, offerID *uint64, at time.Time) ([]entities.Offer, error) {
	if offerID != nil {
		offer, err := s.offerRepo.FindOffer(ctx, nil, *offerID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: предложение %d", apperrors.ErrResourceAbsent, *offerID)
		}
		if err != nil {
			return nil, err
		}
		return []entities.Offer{*offer}, nil
	}
	return s.offerRepo.FindEligible(ctx, borrower.Score, at)
}
