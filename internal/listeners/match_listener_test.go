package listeners

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-broker/internal/entities"
	"loan-broker/internal/events"
	"loan-broker/internal/repositories"
	"loan-broker/internal/services"
	apperrors "loan-broker/pkg/errors"
	"loan-broker/pkg/eventbus"
)

var now = time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC)

type matchCall struct {
	BorrowerID uint64
	OfferID    *uint64
	At         time.Time
}

// fakeMatching запоминает вызовы; для absent-анкет возвращает ErrResourceAbsent.
type fakeMatching struct {
	mu     sync.Mutex
	calls  []matchCall
	absent map[uint64]bool
	err    error
	done   chan struct{}
}

func newFakeMatching() *fakeMatching {
	return &fakeMatching{absent: make(map[uint64]bool), done: make(chan struct{}, 16)}
}

func (m *fakeMatching) MatchAndCreate(_ context.Context, borrowerID uint64, offerID *uint64, at time.Time) ([]entities.CreditRequest, error) {
	m.mu.Lock()
	m.calls = append(m.calls, matchCall{BorrowerID: borrowerID, OfferID: offerID, At: at})
	m.mu.Unlock()
	defer func() { m.done <- struct{}{} }()

	if m.absent[borrowerID] {
		return nil, fmt.Errorf("%w: анкета %d", apperrors.ErrResourceAbsent, borrowerID)
	}
	if m.err != nil {
		return nil, m.err
	}
	return []entities.CreditRequest{{BorrowerID: borrowerID}}, nil
}

func (m *fakeMatching) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-m.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("дождались %d из %d заданий", i, n)
		}
	}
}

func (m *fakeMatching) snapshot() []matchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]matchCall(nil), m.calls...)
}

var _ services.MatchingServiceInterface = (*fakeMatching)(nil)

func clock() time.Time { return now }

func TestMatchListener_RunSwallowsResourceAbsent(t *testing.T) {
	matching := newFakeMatching()
	matching.absent[7] = true
	l := NewMatchListener(matching, clock, zap.NewNop())

	err := l.Run(context.Background(), events.MatchRequested{JobID: "j1", BorrowerID: 7})
	assert.NoError(t, err)

	calls := matching.snapshot()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].At.Equal(now))
}

func TestMatchListener_RunReturnsOtherErrors(t *testing.T) {
	matching := newFakeMatching()
	matching.err = errors.New("db down")
	l := NewMatchListener(matching, clock, zap.NewNop())

	err := l.Run(context.Background(), events.MatchRequested{JobID: "j1", BorrowerID: 1})
	assert.EqualError(t, err, "db down")
}

func TestMatchListener_InlineDispatch(t *testing.T) {
	matching := newFakeMatching()
	bus := eventbus.New(zap.NewNop())
	NewMatchListener(matching, clock, zap.NewNop()).Register(bus)

	dispatcher := services.NewBusMatchDispatcher(bus, clock, zap.NewNop())
	offerID := uint64(3)
	_, err := dispatcher.Dispatch(context.Background(), 1, &offerID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Drain(ctx))

	calls := matching.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, uint64(1), calls[0].BorrowerID)
	require.NotNil(t, calls[0].OfferID)
	assert.Equal(t, offerID, *calls[0].OfferID)
}

// memoryQueue - очередь в памяти; пустая очередь ждёт немного, как BRPOP.
type memoryQueue struct {
	mu   sync.Mutex
	jobs []repositories.MatchJob
}

func (q *memoryQueue) Push(_ context.Context, job repositories.MatchJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memoryQueue) Pop(ctx context.Context, _ time.Duration) (*repositories.MatchJob, error) {
	q.mu.Lock()
	if len(q.jobs) > 0 {
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()
		return &job, nil
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(10 * time.Millisecond):
		return nil, repositories.ErrQueueEmpty
	}
}

func TestQueueConsumer_ProcessesJobsUntilCancelled(t *testing.T) {
	matching := newFakeMatching()
	matching.absent[2] = true
	queue := &memoryQueue{}
	for _, id := range []uint64{1, 2, 3} {
		require.NoError(t, queue.Push(context.Background(), repositories.MatchJob{JobID: fmt.Sprint(id), BorrowerID: id}))
	}

	consumer := NewQueueConsumer(queue, NewMatchListener(matching, clock, zap.NewNop()), 2, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- consumer.Run(ctx) }()

	matching.wait(t, 3)
	cancel()

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("воркеры не остановились")
	}

	var borrowers []uint64
	for _, c := range matching.snapshot() {
		borrowers = append(borrowers, c.BorrowerID)
	}
	assert.ElementsMatch(t, []uint64{1, 2, 3}, borrowers)
}
