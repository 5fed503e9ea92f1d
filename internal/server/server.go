package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"
	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/remora/internal/config"
	"github.com/nfrund/remora/internal/handlers"
	"github.com/nfrund/remora/internal/hub"
	appmw "github.com/nfrund/remora/internal/middleware"
	"github.com/nfrund/remora/internal/module"
	"github.com/nfrund/remora/internal/pubsub"
	"github.com/nfrund/remora/internal/registry"
	"github.com/nfrund/remora/internal/rendering"
)

// Dependencies holds everything a Server needs. Config is required; every
// other field defaults to a production implementation when left nil, so
// tests can inject fakes selectively.
type Dependencies struct {
	Config     config.Provider
	Echo       *echo.Echo
	DB         *surrealdb.DB
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
	Renderer   rendering.Renderer
	Hub        *hub.Hub
	Registry   *registry.Registry

	// FS is the filesystem the module manifest and startup hooks are read
	// from. Defaults to the OS filesystem.
	FS afero.Fs
}

// Server holds the wired application: the HTTP engine, the shared services
// and the root of the module tree.
type Server struct {
	E          *echo.Echo
	DB         *surrealdb.DB
	Cfg        config.Provider
	Registry   *registry.Registry
	Hub        *hub.Hub
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
	Renderer   rendering.Renderer
	Root       *module.Node

	fs               afero.Fs
	cancelBackground context.CancelFunc
}

// New assembles a Server from its dependencies. It wires the middleware
// stack, the error handler, the service registry and the root module node,
// but starts nothing; call Bootstrap to bring the module tree up and Start
// to serve.
func New(deps Dependencies) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("server: config provider is required")
	}

	e := deps.Echo
	if e == nil {
		e = echo.New()
		e.HideBanner = true
	}

	if deps.Publisher == nil || deps.Subscriber == nil {
		bridge := pubsub.NewWatermillBridge()
		if deps.Publisher == nil {
			deps.Publisher = bridge
		}
		if deps.Subscriber == nil {
			deps.Subscriber = bridge
		}
	}
	if deps.Renderer == nil {
		deps.Renderer = rendering.NewUniversalRenderer()
	}
	if deps.Hub == nil {
		deps.Hub = hub.NewHub()
	}
	if deps.Registry == nil {
		deps.Registry = registry.New(deps.Config)
	}
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}

	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(appmw.Logger)
	e.Use(appmw.DBTimeouts(deps.Config))

	// Configure and use session middleware
	store := sessions.NewCookieStore([]byte(deps.Config.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
	}
	e.Use(session.Middleware(store))

	e.Validator = handlers.NewValidator()
	if r, ok := deps.Renderer.(echo.Renderer); ok {
		e.Renderer = r
	}

	setupErrorHandling(e)

	// Seed the registry with the framework services so modules can resolve
	// them at runtime.
	registry.Set(deps.Registry, registry.KeyPublisher, deps.Publisher)
	registry.Set(deps.Registry, registry.KeySubscriber, deps.Subscriber)
	registry.Set(deps.Registry, hub.Key, deps.Hub)

	root, err := module.New(nil, module.Config{
		Name:      "app",
		Router:    e,
		DB:        deps.DB,
		AutoStart: true,
		Events:    deps.Publisher,
	})
	if err != nil {
		return nil, fmt.Errorf("creating root module: %w", err)
	}

	return &Server{
		E:          e,
		DB:         deps.DB,
		Cfg:        deps.Config,
		Registry:   deps.Registry,
		Hub:        deps.Hub,
		Publisher:  deps.Publisher,
		Subscriber: deps.Subscriber,
		Renderer:   deps.Renderer,
		Root:       root,
		fs:         deps.FS,
	}, nil
}
