// Package events publishes bill lifecycle notifications.
package events

import (
	"context"
	"sync"
)

type Publisher interface {
	Publish(ctx context.Context, event BillEvent) error
	Close() error
}

// Noop discards every event. It is used when AMQP_URL is not set.
type Noop struct{}

func (Noop) Publish(context.Context, BillEvent) error { return nil }

func (Noop) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []BillEvent
}

func (r *Recorder) Publish(_ context.Context, event BillEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []BillEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BillEvent(nil), r.events...)
}
