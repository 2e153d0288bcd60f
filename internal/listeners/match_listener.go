package listeners

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"loan-broker/internal/activity"
	"loan-broker/internal/events"
	"loan-broker/internal/services"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/eventbus"
)

// MatchListener выполняет задания подбора. Своего состояния не держит:
// всё нужное приходит в задании.
type MatchListener struct {
	matching services.MatchingServiceInterface
	clock    activity.Clock
	logger   *zap.Logger
}

func NewMatchListener(matching services.MatchingServiceInterface, clock activity.Clock, logger *zap.Logger) *MatchListener {
	if clock == nil {
		clock = activity.SystemClock
	}
	return &MatchListener{matching: matching, clock: clock, logger: logger}
}

func (l *MatchListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.MatchRequestedEvent, l.handleMatchRequested)
	l.logger.Info("MatchListener подписан на событие", zap.String("event", events.MatchRequestedEvent))
}

func (l *MatchListener) handleMatchRequested(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.MatchRequested)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}
	return l.Run(ctx, e)
}

// Run выполняет одно задание. Отсутствие анкеты или предложения не ошибка
// для вызывающего: задание просто завершается, повторов нет.
func (l *MatchListener) Run(ctx context.Context, e events.MatchRequested) error {
	logger := l.logger.With(zap.String("jobID", e.JobID), zap.Uint64("borrowerID", e.BorrowerID))
	logger.Debug("Задание подбора получено")

	_, err := l.matching.MatchAndCreate(ctx, e.BorrowerID, e.OfferID, l.clock())
	if errors.Is(err, apperrors.ErrResourceAbsent) {
		logger.Warn("Задание подбора отброшено", zap.Error(err))
		return nil
	}
	return err
}
