package announcer

import (
	"sync"

	"github.com/nfrund/remora/internal/pubsub"
)

// defaultLogSize bounds the ring when the caller doesn't pick a size.
const defaultLogSize = 64

// EventLog is a bounded, concurrency-safe ring of the most recent module
// lifecycle events.
type EventLog struct {
	mu     sync.RWMutex
	events []pubsub.LifecycleEvent
	max    int
}

// NewEventLog creates a log holding at most max events. Sizes below one
// fall back to the default.
func NewEventLog(max int) *EventLog {
	if max <= 0 {
		max = defaultLogSize
	}
	return &EventLog{max: max}
}

// Add appends an event, dropping the oldest once the ring is full.
func (l *EventLog) Add(e pubsub.LifecycleEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, e)
	if len(l.events) > l.max {
		l.events = l.events[len(l.events)-l.max:]
	}
}

// Len returns the number of retained events.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Recent returns up to n retained events, newest first. n below one means
// all of them.
func (l *EventLog) Recent(n int) []pubsub.LifecycleEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.events) {
		n = len(l.events)
	}

	out := make([]pubsub.LifecycleEvent, 0, n)
	for i := len(l.events) - 1; i >= len(l.events)-n; i-- {
		out = append(out, l.events[i])
	}
	return out
}
