package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"loan-broker/internal/authz"
	"loan-broker/internal/dto"
	"loan-broker/internal/entities"
	"loan-broker/internal/repositories"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/metrics"
)

const actorCacheName = "actor"

type ActorServiceInterface interface {
	ResolveActor(ctx context.Context, userID uint64) (*authz.Actor, error)
	// Attach кладёт актора в контекст; подходит как middleware.ContextEnricher.
	Attach(ctx context.Context, userID uint64) (context.Context, error)
	InvalidateActor(ctx context.Context, userID uint64) error
}

type ActorService struct {
	userRepo    repositories.UserRepositoryInterface
	companyRepo repositories.CompanyRepositoryInterface
	cacheRepo   repositories.CacheRepositoryInterface
	metrics     *metrics.Metrics
	logger      *zap.Logger
	cacheTTL    time.Duration
}

func NewActorService(
	userRepo repositories.UserRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	metrics *metrics.Metrics,
	logger *zap.Logger,
	cacheTTL time.Duration,
) ActorServiceInterface {
	return &ActorService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		cacheRepo:   cacheRepo,
		metrics:     metrics,
		logger:      logger,
		cacheTTL:    cacheTTL,
	}
}

func actorCacheKey(userID uint64) string {
	return fmt.Sprintf("auth:actor:%d", userID)
}

func (s *ActorService) ResolveActor(ctx context.Context, userID uint64) (*authz.Actor, error) {
	cacheKey := actorCacheKey(userID)

	var cached authz.Actor
	errGet := s.cacheRepo.GetJSON(ctx, cacheKey, &cached)
	if errGet == nil {
		s.metrics.IncrCacheHit(actorCacheName)
		s.logger.Debug("ActorService: пользователь найден в кеше", zap.Uint64("userID", userID))
		return &cached, nil
	}
	s.metrics.IncrCacheMiss(actorCacheName)
	if !errors.Is(errGet, repositories.ErrCacheMiss) {
		s.logger.Warn("ActorService: ошибка чтения кеша", zap.String("key", cacheKey), zap.Error(errGet))
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		s.logger.Error("ActorService: не удалось загрузить пользователя", zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		s.logger.Warn("ActorService: пользователь отключён", zap.Uint64("userID", userID))
		return nil, apperrors.ErrUnauthorized
	}

	actor := &authz.Actor{
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
	}

	company, err := s.companyRepo.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		actor.Company = company
	case errors.Is(err, apperrors.ErrNotFound):
		// пользователь без компании
	default:
		s.logger.Error("ActorService: не удалось загрузить компанию", zap.Uint64("userID", userID), zap.Error(err))
		return nil, err
	}

	if errSet := s.cacheRepo.SetJSON(ctx, cacheKey, actor, s.cacheTTL); errSet != nil {
		s.logger.Error("ActorService: не удалось сохранить пользователя в кеш", zap.Uint64("userID", userID), zap.Error(errSet))
	}
	return actor, nil
}

func (s *ActorService) Attach(ctx context.Context, userID uint64) (context.Context, error) {
	actor, err := s.ResolveActor(ctx, userID)
	if err != nil {
		return ctx, err
	}
	return authz.WithActor(ctx, actor), nil
}

func (s *ActorService) InvalidateActor(ctx context.Context, userID uint64) error {
	return s.cacheRepo.Del(ctx, actorCacheKey(userID))
}

func companyEntityToDTO(company *entities.Company) *dto.CompanyDTO {
	if company == nil {
		return nil
	}
	return &dto.CompanyDTO{ID: company.ID, Name: company.Name, Kind: string(company.Kind)}
}

func actorToDTO(actor *authz.Actor) dto.ActorDTO {
	return dto.ActorDTO{
		ID:          actor.UserID,
		Username:    actor.Username,
		IsSuperuser: actor.IsSuperuser,
		Role:        string(actor.Role()),
		Company:     companyEntityToDTO(actor.Company),
	}
}
