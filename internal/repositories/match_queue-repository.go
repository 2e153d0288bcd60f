package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// MatchJob - задание на подбор предложений в очереди Redis.
type MatchJob struct {
	JobID      string    `json:"job_id"`
	BorrowerID uint64    `json:"borrower_id"`
	OfferID    *uint64   `json:"offer_id,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// ErrQueueEmpty - за время ожидания заданий не появилось.
var ErrQueueEmpty = errors.New("очередь пуста")

type MatchQueueRepositoryInterface interface {
	Push(ctx context.Context, job MatchJob) error
	// Pop блокируется до появления задания или истечения wait.
	Pop(ctx context.Context, wait time.Duration) (*MatchJob, error)
}

// RedisMatchQueue: LPUSH в голову, BRPOP с хвоста - FIFO.
type RedisMatchQueue struct {
	client *redis.Client
	key    string
}

func NewRedisMatchQueue(client *redis.Client, key string) MatchQueueRepositoryInterface {
	return &RedisMatchQueue{client: client, key: key}
}

func (q *RedisMatchQueue) Push(ctx context.Context, job MatchJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("не удалось поставить задание в очередь: %w", err)
	}
	return nil
}

func (q *RedisMatchQueue) Pop(ctx context.Context, wait time.Duration) (*MatchJob, error) {
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}
	// BRPOP возвращает [ключ, значение]
	if len(res) != 2 {
		return nil, fmt.Errorf("неожиданный ответ BRPOP: %v", res)
	}

	var job MatchJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("повреждённое задание в очереди: %w", err)
	}
	return &job, nil
}
