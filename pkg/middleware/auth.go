package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/pkg/contextkeys"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/service"
	"loan-broker/pkg/utils"
)

// ContextEnricher дополняет контекст запроса данными пользователя,
// например его компанией. Ошибка прерывает запрос.
type ContextEnricher func(ctx context.Context, userID uint64) (context.Context, error)

type AuthMiddleware struct {
	jwtService service.JWTService
	enrich     ContextEnricher
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, enrich ContextEnricher, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		enrich:     enrich,
		logger:     logger,
	}
}

func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		// "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := context.WithValue(c.Request().Context(), contextkeys.UserIDKey, claims.UserID)
		if m.enrich != nil {
			ctx, err = m.enrich(ctx, claims.UserID)
			if err != nil {
				m.logger.Warn("AuthMiddleware: Не удалось загрузить пользователя",
					zap.Uint64("userID", claims.UserID), zap.Error(err))
				return utils.ErrorResponse(c, err, m.logger)
			}
		}
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: Пользователь аутентифицирован", zap.Uint64("userID", claims.UserID))
		return next(c)
	}
}
