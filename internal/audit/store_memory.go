package audit

import (
	"context"
	"sync"
	"time"
)

// InMemoryPublisher retains events in memory. Used in tests and in
// single-instance deployments that only need the slog trail.
type InMemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

// NewInMemoryPublisher creates an empty in-memory event sink.
func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

// Emit appends the event, stamping the time when unset.
func (p *InMemoryPublisher) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *InMemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// ByAction filters retained events by action name.
func (p *InMemoryPublisher) ByAction(action string) []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []Event
	for _, ev := range p.events {
		if ev.Action == action {
			out = append(out, ev)
		}
	}
	return out
}
