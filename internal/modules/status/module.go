package status

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/remora/internal/hub"
	"github.com/nfrund/remora/internal/module"
	"github.com/nfrund/remora/internal/modules/announcer"
	"github.com/nfrund/remora/internal/pubsub"
	"github.com/nfrund/remora/internal/registry"
	"github.com/nfrund/remora/internal/rendering"
)

// StatusModule serves a live view of the running module tree: an HTML page,
// a JSON snapshot and a websocket stream of lifecycle events.
type StatusModule struct {
	*module.Node
	deps     Dependencies
	root     module.Module
	renderer rendering.Renderer
}

// Dependencies holds the services the status module can use. Everything is
// optional; missing pieces switch the matching feature off.
type Dependencies struct {
	// Root is the module the tree view starts from. When nil the module
	// falls back to its own parent, which in the usual wiring is the
	// application root.
	Root module.Module

	// Hub feeds the websocket stream. Without it the /ws route is not
	// registered.
	Hub *hub.Hub

	// Registry is where the announcer publishes its event log. Without it
	// the page shows no event history.
	Registry *registry.Registry

	// Renderer overrides the universal renderer.
	Renderer rendering.Renderer
}

// New constructs the status module. It stays inert until activated.
func New(cfg module.Config, deps Dependencies) (*StatusModule, error) {
	m := &StatusModule{deps: deps}
	node, err := module.New(m, cfg)
	if err != nil {
		return nil, err
	}
	m.Node = node
	return m, nil
}

// Start resolves the tree root and registers the status routes.
func (m *StatusModule) Start(ctx context.Context) error {
	m.root = m.deps.Root
	if m.root == nil {
		if p := m.Parent(); p != nil {
			m.root = p
		} else {
			m.root = m
		}
	}

	m.renderer = m.deps.Renderer
	if m.renderer == nil {
		m.renderer = rendering.NewUniversalRenderer()
	}

	r := m.Router()
	r.GET("", m.page)
	r.GET("/fragments/tree", m.treeFragment)
	r.GET("/api/v1/tree", m.treeJSON)
	if m.deps.Hub != nil {
		r.GET("/ws", m.stream)
	}

	m.Log().Info("Status routes registered", "websocket", m.deps.Hub != nil)
	return nil
}

func (m *StatusModule) page(c echo.Context) error {
	base := strings.TrimSuffix(c.Path(), "/")

	paths := Paths{TreeFragment: base + "/fragments/tree"}
	if m.deps.Hub != nil {
		paths.WS = base + "/ws"
	}

	page := StatusPage(Snapshot(m.root), m.recentEvents(), paths)
	return m.renderer.RenderPage(c, http.StatusOK, page)
}

func (m *StatusModule) treeFragment(c echo.Context) error {
	return m.renderer.RenderPage(c, http.StatusOK, TreeView(Snapshot(m.root)))
}

func (m *StatusModule) treeJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, Snapshot(m.root))
}

// recentEvents pulls the announcer's event log out of the registry, when
// both are wired. The lookup happens per request because the announcer may
// start after this module.
func (m *StatusModule) recentEvents() []pubsub.LifecycleEvent {
	if m.deps.Registry == nil {
		return nil
	}
	log, ok := registry.Get(m.deps.Registry, announcer.LogKey)
	if !ok {
		return nil
	}
	return log.Recent(10)
}

// stream upgrades to a websocket and pushes every hub frame to the client
// until it disconnects or the hub shuts down.
func (m *StatusModule) stream(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	sub := &hub.Subscriber{Send: make(chan []byte, 16)}
	m.deps.Hub.Register <- sub
	defer func() {
		// Best effort: the hub may already be shut down, in which case it
		// has closed the subscriber itself.
		select {
		case m.deps.Hub.Unregister <- sub:
		case <-time.After(time.Second):
		}
	}()

	// The client never sends anything meaningful; CloseRead keeps control
	// frames flowing and cancels the context when the peer goes away.
	ctx := conn.CloseRead(c.Request().Context())

	for {
		select {
		case frame, ok := <-sub.Send:
			if !ok {
				return conn.Close(websocket.StatusNormalClosure, "hub shut down")
			}
			if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
				return err
			}
		case <-ctx.Done():
			return conn.Close(websocket.StatusNormalClosure, "")
		}
	}
}
