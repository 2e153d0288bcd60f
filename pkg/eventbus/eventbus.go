package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event представляет собой любое событие в системе.
type Event interface {
	Name() string
}

// Listener - это обработчик (слушатель) событий.
type Listener func(ctx context.Context, event Event) error

// Bus - шина событий в пределах процесса. Каждый слушатель запускается в
// своей горутине со своим таймаутом.
type Bus struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
	wg        sync.WaitGroup
	timeout   time.Duration
	logger    *zap.Logger
}

// New создает новую шину событий с таймаутом обработки по умолчанию в 1 минуту.
func New(logger *zap.Logger) *Bus {
	return NewWithTimeout(logger, time.Minute)
}

func NewWithTimeout(logger *zap.Logger, timeout time.Duration) *Bus {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Bus{
		listeners: make(map[string][]Listener),
		timeout:   timeout,
		logger:    logger,
	}
}

// Subscribe подписывает слушателя на определенное событие.
func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish публикует событие и сразу возвращает управление.
// Контекст запроса слушателям не передаётся: обработка переживает ответ клиенту.
func (b *Bus) Publish(_ context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	eventName := event.Name()
	listeners, ok := b.listeners[eventName]
	if !ok {
		b.logger.Debug("У события нет подписчиков", zap.String("event", eventName))
		return
	}

	for _, listener := range listeners {
		b.wg.Add(1)
		go func(l Listener) {
			defer b.wg.Done()
			ctxWithTimeout, cancel := context.WithTimeout(context.Background(), b.timeout)
			defer cancel()

			if err := l(ctxWithTimeout, event); err != nil {
				b.logger.Error("Ошибка в обработчике события",
					zap.String("event", eventName),
					zap.Error(err),
				)
			}
		}(listener)
	}
}

// Drain ждёт завершения запущенных обработчиков или отмены ctx.
func (b *Bus) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
