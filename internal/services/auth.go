package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"loan-broker/internal/authz"
	"loan-broker/internal/dto"
	"loan-broker/internal/repositories"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/service"
	"loan-broker/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Me(ctx context.Context) (*dto.ActorDTO, error)
}

type AuthService struct {
	userRepo     repositories.UserRepositoryInterface
	actorService ActorServiceInterface
	jwtService   service.JWTService
	logger       *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	actorService ActorServiceInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:     userRepo,
		actorService: actorService,
		jwtService:   jwtService,
		logger:       logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	logger := s.logger.With(zap.String("username", payload.Username))

	user, err := s.userRepo.FindUserByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			logger.Info("Вход: пользователь не найден")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		logger.Warn("Вход: пользователь отключён")
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := utils.ComparePasswords(user.PasswordHash, payload.Password); err != nil {
		logger.Info("Вход: неверный пароль")
		return nil, apperrors.ErrInvalidCredentials
	}

	// после входа профиль перечитывается из БД
	if err := s.actorService.InvalidateActor(ctx, user.ID); err != nil {
		logger.Warn("Вход: не удалось сбросить кеш пользователя", zap.Error(err))
	}
	actor, err := s.actorService.ResolveActor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		logger.Error("Вход: не удалось выпустить токен", zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	logger.Info("Пользователь вошёл в систему", zap.Uint64("userID", user.ID))
	return &dto.AuthResponseDTO{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtService.GetAccessTokenTTL().Seconds()),
		User:        actorToDTO(actor),
	}, nil
}

func (s *AuthService) Me(ctx context.Context) (*dto.ActorDTO, error) {
	actor, err := authz.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	res := actorToDTO(actor)
	return &res, nil
}
