package module

import (
	"github.com/labstack/echo/v4"
	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/remora/internal/pubsub"
)

// Router is the routing surface a node consumes. Both *echo.Echo and
// *echo.Group satisfy it, so a module tree can be mounted at the application
// root or under any existing group. The kit itself only ever calls Group;
// the rest of the surface is there for modules registering their routes.
type Router interface {
	Group(prefix string, m ...echo.MiddlewareFunc) *echo.Group
	Use(middleware ...echo.MiddlewareFunc)
	Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

var (
	_ Router = (*echo.Echo)(nil)
	_ Router = (*echo.Group)(nil)
)

// Config carries everything a node needs at construction time. A parent
// hands its own record down when loading children, so fields set on the root
// flow through the whole tree unless an Option overrides them.
type Config struct {
	// Name identifies the module. When empty, New derives one from the
	// owner's type name (NotesModule -> "notes").
	Name string

	// Router is the surface the node registers routes on. Required.
	Router Router

	// RouterPrefix, when set, scopes the node to Router.Group(RouterPrefix)
	// instead of the router itself.
	RouterPrefix string

	// DB is the shared database handle. The kit never calls it; it only
	// hands it to modules that want storage.
	DB *surrealdb.DB

	// AutoStart makes the loader activate a child immediately after
	// attaching it.
	AutoStart bool

	// Parent records which module loaded this one. The loader fills it in;
	// setting it by hand is bookkeeping only, not an attachment.
	Parent Module

	// Events, when non-nil, receives a message per lifecycle transition on
	// pubsub.TopicModuleLifecycle.
	Events pubsub.Publisher
}

// DefaultConfig returns the record an application root is normally built
// from: the given router, autostart on.
func DefaultConfig(router Router) Config {
	return Config{
		Router:    router,
		AutoStart: true,
	}
}

// Option overrides a single field of an inherited Config. The loader applies
// options after inheritance, so an option always wins over the parent's
// record.
type Option func(*Config)

// WithName sets the child's name instead of deriving one.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithRouter replaces the inherited router.
func WithRouter(router Router) Option {
	return func(c *Config) { c.Router = router }
}

// WithRouterPrefix mounts the child under a path prefix of its router.
func WithRouterPrefix(prefix string) Option {
	return func(c *Config) { c.RouterPrefix = prefix }
}

// WithDB replaces the inherited database handle.
func WithDB(db *surrealdb.DB) Option {
	return func(c *Config) { c.DB = db }
}

// WithAutoStart overrides whether the loader activates the child.
func WithAutoStart(auto bool) Option {
	return func(c *Config) { c.AutoStart = auto }
}

// WithParent overrides the recorded parent.
func WithParent(parent Module) Option {
	return func(c *Config) { c.Parent = parent }
}

// WithEvents replaces the inherited lifecycle publisher.
func WithEvents(events pubsub.Publisher) Option {
	return func(c *Config) { c.Events = events }
}
