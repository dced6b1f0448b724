package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope wraps a published event with a correlation id.
type Envelope struct {
	ID          uuid.UUID
	PublishedAt time.Time
	Event       Event
}

// Handler consumes one published event.
type Handler func(ctx context.Context, env Envelope) error

type subscriber struct {
	name    string
	handler Handler
}

// Bus delivers events to subscribers synchronously, in registration order.
// A failing or panicking subscriber never affects the others.
type Bus struct {
	logger *zap.Logger
	mu     sync.RWMutex
	subs   []subscriber
}

// NewBus creates an empty Bus.
//
// Precondition: logger must be non-nil.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe appends a named handler.
//
// Precondition: name must be non-empty; h must be non-nil.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscriber{name: name, handler: h})
}

// Publish delivers ev to every subscriber and returns the number of
// subscribers that failed.
//
// Postcondition: every subscriber was invoked exactly once.
func (b *Bus) Publish(ctx context.Context, ev Event) int {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	env := Envelope{ID: uuid.New(), PublishedAt: time.Now(), Event: ev}
	failed := 0
	for _, s := range subs {
		if err := b.deliver(ctx, s, env); err != nil {
			failed++
			b.logger.Error("event subscriber failed",
				zap.String("event", ev.Name()),
				zap.String("event_id", env.ID.String()),
				zap.String("subscriber", s.name),
				zap.Error(err),
			)
		}
	}
	b.logger.Debug("event published",
		zap.String("event", ev.Name()),
		zap.String("event_id", env.ID.String()),
		zap.Int("subscribers", len(subs)),
		zap.Int("failed", failed),
	)
	return failed
}

func (b *Bus) deliver(ctx context.Context, s subscriber, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.handler(ctx, env)
}
