package services

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"loan-broker/internal/activity"
	"loan-broker/internal/authz"
	"loan-broker/pkg/utils"
)

// BaseService - общие для сервисов проверки доступа.
type BaseService struct {
	gatekeeper *authz.Gatekeeper
	clock      activity.Clock
	logger     *zap.Logger
}

func NewBaseService(gatekeeper *authz.Gatekeeper, clock activity.Clock, logger *zap.Logger) *BaseService {
	if clock == nil {
		clock = activity.SystemClock
	}
	return &BaseService{gatekeeper: gatekeeper, clock: clock, logger: logger}
}

// authorize достаёт актора из контекста и проверяет операцию над коллекцией.
func (s *BaseService) authorize(ctx context.Context, entity authz.Entity, op authz.Operation) (*authz.Actor, error) {
	actor, err := authz.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.gatekeeper.Authorize(actor, entity, op); err != nil {
		s.logger.Warn("Отказано в доступе",
			zap.String("request_id", utils.GetRequestIDFromCtx(ctx)),
			zap.Uint64("userID", actor.UserID),
			zap.String("entity", string(entity)),
			zap.String("operation", string(op)),
			zap.Error(err))
		return nil, err
	}
	return actor, nil
}

func (s *BaseService) authorizeObject(actor *authz.Actor, entity authz.Entity, op authz.Operation, target interface{}) error {
	if err := s.gatekeeper.AuthorizeObject(actor, entity, op, target); err != nil {
		s.logger.Warn("Отказано в доступе к записи",
			zap.Uint64("userID", actor.UserID),
			zap.String("entity", string(entity)),
			zap.String("operation", string(op)),
			zap.Error(err))
		return err
	}
	return nil
}

// scope - предикат видимости на текущий момент.
func (s *BaseService) scope(actor *authz.Actor, entity authz.Entity) sq.Sqlizer {
	return authz.Scope(actor, entity, s.clock())
}
