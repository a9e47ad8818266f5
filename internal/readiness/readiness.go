// Package readiness implements the bridge's two process-wide monotonic
// readiness events: DAW connected and catalog populated.
package readiness

import (
	"context"
	"sync"
)

// Event is a one-shot, monotonic broadcast flag: Set may be called many
// times (only the first has effect), Wait blocks until Set has been called
// or the context/timeout expires. It is never cleared except by process
// restart.
type Event struct {
	once sync.Once
	ch   chan struct{}
}

// NewEvent constructs an unset Event.
func NewEvent() *Event {
	return &Event{ch: make(chan struct{})}
}

// Set marks the event satisfied. Idempotent: subsequent calls are no-ops.
func (e *Event) Set() {
	e.once.Do(func() { close(e.ch) })
}

// IsSet reports whether Set has been called, without blocking.
func (e *Event) IsSet() bool {
	select {
	case <-e.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the event is set or ctx is done, returning true if the
// event became set before ctx expired.
func (e *Event) Wait(ctx context.Context) bool {
	select {
	case <-e.ch:
		return true
	case <-ctx.Done():
		return false
	}
}

// Signals bundles the two process-wide readiness events so they can be
// threaded through constructors as a single value.
type Signals struct {
	DawConnected     *Event
	CatalogPopulated *Event
}

// NewSignals constructs a fresh, unset pair of readiness events.
func NewSignals() *Signals {
	return &Signals{
		DawConnected:     NewEvent(),
		CatalogPopulated: NewEvent(),
	}
}
