package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingEvent struct{}

func (pingEvent) Name() string { return "ping" }

func TestBus_PublishRunsEveryListener(t *testing.T) {
	bus := New(zap.NewNop())
	var calls int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("ping", func(ctx context.Context, e Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}
	bus.Subscribe("ping", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	})

	bus.Publish(context.Background(), pingEvent{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Drain(ctx))
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestBus_ListenerOutlivesCancelledPublisher(t *testing.T) {
	bus := New(zap.NewNop())
	var sawErr error
	bus.Subscribe("ping", func(ctx context.Context, e Event) error {
		sawErr = ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pingEvent{})

	drainCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	require.NoError(t, bus.Drain(drainCtx))
	assert.NoError(t, sawErr)
}

func TestBus_ListenerTimeout(t *testing.T) {
	bus := NewWithTimeout(zap.NewNop(), 10*time.Millisecond)
	var deadlineHit int32
	bus.Subscribe("ping", func(ctx context.Context, e Event) error {
		<-ctx.Done()
		atomic.StoreInt32(&deadlineHit, 1)
		return ctx.Err()
	})

	bus.Publish(context.Background(), pingEvent{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Drain(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(&deadlineHit))
}
