package event

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	defaultQueueSize = 1024
	defaultTimeout   = 30 * time.Second
)

type Event interface {
	Name() string
}

type Handler func(ctx context.Context, e Event) error

// Bus is an in-memory event bus. Every subscription owns a queue drained by a single
// goroutine, so a handler receives events in the order they were published and a slow
// handler only delays itself.
type Bus struct {
	wg       *sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	handlers map[string][]*subscription
}

type subscription struct {
	h     Handler
	queue chan envelope
}

type envelope struct {
	ctx context.Context
	e   Event
}

// NewBus create a new event bus. Caller should call Stop for graceful shutdown the bus.
func NewBus() *Bus {
	return &Bus{
		wg:       new(sync.WaitGroup),
		handlers: make(map[string][]*subscription),
	}
}

// Subscribe to an event
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		slog.Warn("event: subscribe on stopped bus", "event", name)
		return
	}

	s := &subscription{
		h:     h,
		queue: make(chan envelope, defaultQueueSize),
	}
	b.handlers[name] = append(b.handlers[name], s)

	b.wg.Add(1)
	go b.run(s)
}

// Publish an event. Blocks only when a subscriber's queue is full.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.stopped {
		slog.WarnContext(ctx, "event: publish on stopped bus", "event", e.Name())
		return
	}

	for _, s := range b.handlers[e.Name()] {
		s.queue <- envelope{ctx: context.WithoutCancel(ctx), e: e}
	}
}

func (b *Bus) run(s *subscription) {
	defer b.wg.Done()

	for env := range s.queue {
		b.handle(s.h, env)
	}
}

func (b *Bus) handle(h Handler, env envelope) {
	ctx, cancel := context.WithTimeout(env.ctx, defaultTimeout)
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "event: handler panic",
				"event", env.e.Name(),
				"error", fmt.Errorf("%v, stack: %s", r, debug.Stack()),
			)
		}

		cancel()
	}()

	if err := h(ctx, env.e); err != nil {
		slog.ErrorContext(ctx, "event: handle event failed",
			"event", env.e.Name(),
			"error", err,
		)
	}
}

// Stop drains every queue and waits for all handlers to finish. Events published after
// Stop are dropped.
func (b *Bus) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	for _, subs := range b.handlers {
		for _, s := range subs {
			close(s.queue)
		}
	}
	b.mu.Unlock()

	b.wg.Wait()
}
