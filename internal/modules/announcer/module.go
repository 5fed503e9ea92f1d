package announcer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/remora/internal/hub"
	"github.com/nfrund/remora/internal/module"
	"github.com/nfrund/remora/internal/pubsub"
	"github.com/nfrund/remora/internal/registry"
)

// LogKey is the registry key the announcer's event log is published under.
// Other modules read recent lifecycle history through it without depending
// on this package's wiring.
var LogKey = registry.Key[*EventLog]("announcer.eventlog")

// AnnouncerModule listens to module lifecycle events, keeps the most recent
// ones in a bounded log, and forwards them to the hub for live listeners.
type AnnouncerModule struct {
	*module.Node
	deps   Dependencies
	events *EventLog
}

// Dependencies holds the services the announcer needs.
type Dependencies struct {
	// Subscriber is the bus the lifecycle events arrive on. Required.
	Subscriber pubsub.Subscriber

	// Registry, when set, gets the event log published under LogKey.
	Registry *registry.Registry

	// Hub, when set, receives every lifecycle event as a JSON frame.
	Hub *hub.Hub

	// LogSize bounds the event log. Zero means the default.
	LogSize int
}

// New constructs the announcer module. It stays inert until activated.
func New(cfg module.Config, deps Dependencies) (*AnnouncerModule, error) {
	if deps.Subscriber == nil {
		return nil, errors.New("announcer: subscriber is required")
	}

	m := &AnnouncerModule{deps: deps, events: NewEventLog(deps.LogSize)}
	node, err := module.New(m, cfg)
	if err != nil {
		return nil, err
	}
	m.Node = node
	return m, nil
}

// Start publishes the event log, registers the recent-events route and
// subscribes to the lifecycle topic. The subscription lives until the
// context handed to Start is canceled.
func (m *AnnouncerModule) Start(ctx context.Context) error {
	if m.deps.Registry != nil {
		registry.Set(m.deps.Registry, LogKey, m.events)
	}

	m.Router().GET("", m.recent)

	if err := m.deps.Subscriber.Subscribe(ctx, pubsub.TopicModuleLifecycle, m.handleLifecycle); err != nil {
		return fmt.Errorf("subscribing to lifecycle events: %w", err)
	}

	m.Log().Info("Announcer listening for lifecycle events")
	return nil
}

// Events returns the module's event log.
func (m *AnnouncerModule) Events() *EventLog {
	return m.events
}

// handleLifecycle records one lifecycle event and forwards it to the hub.
func (m *AnnouncerModule) handleLifecycle(ctx context.Context, msg pubsub.Message) error {
	event, err := pubsub.ParseLifecycleEvent(msg)
	if err != nil {
		m.Log().Warn("Dropping malformed lifecycle event", "error", err)
		return nil
	}

	m.events.Add(event)

	if m.deps.Hub != nil {
		frame, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encoding lifecycle frame: %w", err)
		}
		select {
		case m.deps.Hub.Broadcast <- frame:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// recent serves the most recent lifecycle events, newest first.
func (m *AnnouncerModule) recent(c echo.Context) error {
	limit := 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter").SetInternal(err)
		}
	}
	return c.JSON(http.StatusOK, m.events.Recent(limit))
}
