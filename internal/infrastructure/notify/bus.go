// Package notify provides the in-process publish/subscribe bus used to tell
// interested components that a collection changed and should be re-read.
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/taskmaster/tracker/internal/infrastructure/logger"
)

// Handler reacts to a published notification.
type Handler func(ctx context.Context, name string)

// Subscription identifies one registered handler.
type Subscription struct {
	name string
	id   uint64
}

// Name returns the notification name the subscription listens to.
func (s Subscription) Name() string { return s.name }

type entry struct {
	id      uint64
	handler Handler
}

// Bus delivers notifications synchronously to every handler subscribed at
// publish time. Missed notifications are not replayed.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]entry
	nextID   atomic.Uint64
	closed   bool
	logger   *logger.Logger
}

// New creates a Bus.
func New(log *logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]entry),
		logger:   log.WithComponent("notify"),
	}
}

// Subscribe registers handler for name.
func (b *Bus) Subscribe(name string, handler Handler) Subscription {
	sub := Subscription{name: name, id: b.nextID.Add(1)}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return sub
	}
	b.handlers[name] = append(b.handlers[name], entry{id: sub.id, handler: handler})
	return sub
}

// SubscribeAll registers handler for each of names.
func (b *Bus) SubscribeAll(names []string, handler Handler) []Subscription {
	subs := make([]Subscription, 0, len(names))
	for _, name := range names {
		subs = append(subs, b.Subscribe(name, handler))
	}
	return subs
}

// Unsubscribe removes the handler behind sub. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[sub.name]
	for i, e := range entries {
		if e.id == sub.id {
			b.handlers[sub.name] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(b.handlers[sub.name]) == 0 {
		delete(b.handlers, sub.name)
	}
}

// Publish calls every handler currently subscribed to name, in subscription
// order, before returning. A panicking handler is logged and skipped.
func (b *Bus) Publish(ctx context.Context, name string) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	entries := append([]entry(nil), b.handlers[name]...)
	b.mu.RUnlock()

	for _, e := range entries {
		b.deliver(ctx, name, e.handler)
	}
}

func (b *Bus) deliver(ctx context.Context, name string, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorw("Notification handler panicked", "name", name, "panic", r)
		}
	}()
	h(ctx, name)
}

// HandlerCount returns the number of handlers subscribed to name.
func (b *Bus) HandlerCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

// Close drops every subscription. Publishing after Close does nothing.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.handlers = make(map[string][]entry)
}
