package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loan-broker/internal/activity"
	"loan-broker/internal/events"
	"loan-broker/internal/repositories"
	"loan-broker/pkg/eventbus"
)

const (
	DispatchInline = "inline"
	DispatchRedis  = "redis"
)

// MatchDispatcher ставит подбор в работу и не ждёт результата.
type MatchDispatcher interface {
	Dispatch(ctx context.Context, borrowerID uint64, offerID *uint64) (string, error)
}

// BusMatchDispatcher публикует задание в шину событий процесса.
type BusMatchDispatcher struct {
	bus    *eventbus.Bus
	clock  activity.Clock
	logger *zap.Logger
}

func NewBusMatchDispatcher(bus *eventbus.Bus, clock activity.Clock, logger *zap.Logger) *BusMatchDispatcher {
	return &BusMatchDispatcher{bus: bus, clock: clock, logger: logger}
}

func (d *BusMatchDispatcher) Dispatch(ctx context.Context, borrowerID uint64, offerID *uint64) (string, error) {
	event := events.MatchRequested{
		JobID:       uuid.NewString(),
		BorrowerID:  borrowerID,
		OfferID:     offerID,
		RequestedAt: d.clock(),
	}
	d.bus.Publish(ctx, event)
	d.logger.Debug("Подбор отправлен в шину", zap.String("jobID", event.JobID), zap.Uint64("borrowerID", borrowerID))
	return event.JobID, nil
}

// QueueMatchDispatcher кладёт задание в очередь Redis для воркеров.
type QueueMatchDispatcher struct {
	queue  repositories.MatchQueueRepositoryInterface
	clock  activity.Clock
	logger *zap.Logger
}

func NewQueueMatchDispatcher(queue repositories.MatchQueueRepositoryInterface, clock activity.Clock, logger *zap.Logger) *QueueMatchDispatcher {
	return &QueueMatchDispatcher{queue: queue, clock: clock, logger: logger}
}

func (d *QueueMatchDispatcher) Dispatch(ctx context.Context, borrowerID uint64, offerID *uint64) (string, error) {
	job := repositories.MatchJob{
		JobID:      uuid.NewString(),
		BorrowerID: borrowerID,
		OfferID:    offerID,
		EnqueuedAt: d.clock(),
	}
	if err := d.queue.Push(ctx, job); err != nil {
		d.logger.Error("Не удалось поставить подбор в очередь", zap.Uint64("borrowerID", borrowerID), zap.Error(err))
		return "", err
	}
	d.logger.Debug("Подбор поставлен в очередь", zap.String("jobID", job.JobID), zap.Uint64("borrowerID", borrowerID))
	return job.JobID, nil
}

func NewMatchDispatcher(
	mode string,
	bus *eventbus.Bus,
	queue repositories.MatchQueueRepositoryInterface,
	clock activity.Clock,
	logger *zap.Logger,
) (MatchDispatcher, error) {
	switch mode {
	case "", DispatchInline:
		return NewBusMatchDispatcher(bus, clock, logger), nil
	case DispatchRedis:
		return NewQueueMatchDispatcher(queue, clock, logger), nil
	}
	return nil, fmt.Errorf("неизвестный способ запуска подбора: %q", mode)
}
