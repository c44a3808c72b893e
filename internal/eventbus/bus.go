// Package eventbus is a keyed publish/subscribe registry. Publishers and
// subscribers agree only on a topic string and the payload type carried on
// it.
//
// Delivery is synchronous and in registration order. Every subscriber runs
// inside its own failure boundary: an error or panic is logged and
// reported back to the publisher, and the remaining subscribers for that
// emission still run.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Callback handles one emission.
type Callback func(ctx context.Context, data any) error

// Subscriber is a registered callback. Identity is the pointer: the same
// *Subscriber can be registered at most once per topic.
type Subscriber struct {
	name string
	fn   Callback
}

// NewSubscriber wraps fn. The name only appears in logs and errors.
func NewSubscriber(name string, fn Callback) *Subscriber {
	return &Subscriber{name: name, fn: fn}
}

// Name returns the subscriber's name.
func (s *Subscriber) Name() string { return s.name }

// Bus maps topics to ordered subscriber lists. The zero value is not
// usable; call New. Bus is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]*Subscriber
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report subscriber failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		topics: make(map[string][]*Subscriber),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers sub under key unless it is already registered there, and
// returns sub. A nil subscriber is ignored.
func (b *Bus) On(key string, sub *Subscriber) *Subscriber {
	if sub == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.topics[key] {
		if s == sub {
			return sub
		}
	}
	b.topics[key] = append(b.topics[key], sub)
	return sub
}

// Off removes sub from key. It is a no-op when sub is not registered.
func (b *Bus) Off(key string, sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[key]
	for i, s := range subs {
		if s == sub {
			// Copy so an Emit holding the old slice is unaffected.
			next := make([]*Subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.topics, key)
			} else {
				b.topics[key] = next
			}
			return
		}
	}
}

// Has reports whether key has any subscriber.
func (b *Bus) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[key]) > 0
}

// HasSubscriber reports whether sub is registered under key.
func (b *Bus) HasSubscriber(key string, sub *Subscriber) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.topics[key] {
		if s == sub {
			return true
		}
	}
	return false
}

// Topics returns the number of subscribers per topic.
func (b *Bus) Topics() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]int, len(b.topics))
	for k, subs := range b.topics {
		out[k] = len(subs)
	}
	return out
}

// Emit delivers data to every subscriber of key in registration order.
// The subscriber list is captured before delivery, so subscribers may call
// On or Off; the change applies from the next emission.
//
// Emit returns nil when every subscriber succeeded (or there were none).
// Otherwise it returns the joined *SubscriberError values.
func (b *Bus) Emit(ctx context.Context, key string, data any) error {
	b.mu.RLock()
	subs := b.topics[key]
	b.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := b.invoke(ctx, key, sub, data); err != nil {
			b.logger.Warn("subscriber failed",
				"topic", key,
				"subscriber", sub.name,
				"error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// invoke runs one subscriber, converting a panic into an error.
func (b *Bus) invoke(ctx context.Context, key string, sub *Subscriber, data any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &SubscriberError{
				Topic:      key,
				Subscriber: sub.name,
				Err:        fmt.Errorf("%w: %v", ErrSubscriberPanic, r),
				Stack:      string(debug.Stack()),
			}
		}
	}()
	if cbErr := sub.fn(ctx, data); cbErr != nil {
		return &SubscriberError{Topic: key, Subscriber: sub.name, Err: cbErr}
	}
	return nil
}
