package hub

import (
	"context"
	"log/slog"

	"github.com/nfrund/remora/internal/registry"
)

// Key is the registry key the application's hub is published under.
var Key = registry.Key[*Hub]("framework.hub")

// Subscriber represents a single client receiving broadcast frames from the
// Hub. The Hub writes to Send; the client drains it.
type Subscriber struct {
	// Send is a buffered channel of outbound messages. The Hub sends
	// messages to this channel, and the client is responsible for reading
	// from it.
	Send chan []byte
}

// Hub is a generic, concurrent broadcast bus. It maintains the set of active
// subscribers and fans incoming frames out to all of them.
type Hub struct {
	// Registered subscribers.
	subscribers map[*Subscriber]bool

	// Broadcast is the channel for inbound messages. Any component can send
	// to this channel to have the message fanned out to all subscribers.
	Broadcast chan []byte

	// Register is a channel for new subscribers to register with the hub.
	Register chan *Subscriber

	// Unregister is a channel for subscribers to unregister from the hub.
	Unregister chan *Subscriber
}

// NewHub creates and returns a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Broadcast:   make(chan []byte),
		Register:    make(chan *Subscriber),
		Unregister:  make(chan *Subscriber),
		subscribers: make(map[*Subscriber]bool),
	}
}

// Run starts the Hub's processing loop. It must be run in its own goroutine
// and exits when ctx is canceled, closing every subscriber channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for subscriber := range h.subscribers {
				close(subscriber.Send)
				delete(h.subscribers, subscriber)
			}
			slog.Debug("Hub stopped")
			return

		case subscriber := <-h.Register:
			h.subscribers[subscriber] = true
			slog.Debug("New subscriber registered", "total_subscribers", len(h.subscribers))

		case subscriber := <-h.Unregister:
			if _, ok := h.subscribers[subscriber]; ok {
				delete(h.subscribers, subscriber)
				close(subscriber.Send)
				slog.Debug("Subscriber unregistered", "total_subscribers", len(h.subscribers))
			}

		case message := <-h.Broadcast:
			for subscriber := range h.subscribers {
				// Non-blocking send. A full buffer suggests the client is
				// lagging or gone, so it gets dropped.
				select {
				case subscriber.Send <- message:
				default:
					close(subscriber.Send)
					delete(h.subscribers, subscriber)
					slog.Warn("Unregistering slow subscriber", "total_subscribers", len(h.subscribers))
				}
			}
		}
	}
}
