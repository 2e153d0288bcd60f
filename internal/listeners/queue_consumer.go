package listeners

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"loan-broker/internal/events"
	"loan-broker/internal/repositories"
)

const (
	defaultPopWait   = 5 * time.Second
	queueErrorPause  = time.Second
	defaultQueueJobs = time.Minute
)

// QueueConsumer читает задания подбора из Redis несколькими воркерами.
// BRPOP снимает задание сразу: если процесс упадёт посреди подбора, задание теряется.
type QueueConsumer struct {
	queue      repositories.MatchQueueRepositoryInterface
	listener   *MatchListener
	workers    int
	popWait    time.Duration
	jobTimeout time.Duration
	logger     *zap.Logger
}

func NewQueueConsumer(
	queue repositories.MatchQueueRepositoryInterface,
	listener *MatchListener,
	workers int,
	jobTimeout time.Duration,
	logger *zap.Logger,
) *QueueConsumer {
	if workers <= 0 {
		workers = 1
	}
	if jobTimeout <= 0 {
		jobTimeout = defaultQueueJobs
	}
	return &QueueConsumer{
		queue:      queue,
		listener:   listener,
		workers:    workers,
		popWait:    defaultPopWait,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Run блокируется до отмены ctx. Начатые задания доводятся до конца.
func (c *QueueConsumer) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.workers; i++ {
		worker := i
		g.Go(func() error {
			return c.work(gctx, worker)
		})
	}
	c.logger.Info("Воркеры подбора запущены", zap.Int("workers", c.workers))
	return g.Wait()
}

func (c *QueueConsumer) work(ctx context.Context, worker int) error {
	logger := c.logger.With(zap.Int("worker", worker))
	for {
		if ctx.Err() != nil {
			logger.Info("Воркер подбора остановлен")
			return nil
		}

		job, err := c.queue.Pop(ctx, c.popWait)
		if errors.Is(err, repositories.ErrQueueEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.Error("Ошибка чтения очереди подбора", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(queueErrorPause):
			}
			continue
		}

		c.handle(logger, job)
	}
}

// handle не наследует ctx воркера: остановка не обрывает начатый подбор.
func (c *QueueConsumer) handle(logger *zap.Logger, job *repositories.MatchJob) {
	jobCtx, cancel := context.WithTimeout(context.Background(), c.jobTimeout)
	defer cancel()

	event := events.MatchRequested{
		JobID:       job.JobID,
		BorrowerID:  job.BorrowerID,
		OfferID:     job.OfferID,
		RequestedAt: job.EnqueuedAt,
	}
	if err := c.listener.Run(jobCtx, event); err != nil {
		logger.Error("Задание подбора завершилось ошибкой", zap.String("jobID", job.JobID), zap.Error(err))
	}
}
