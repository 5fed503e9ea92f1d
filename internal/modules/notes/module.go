package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/nfrund/remora/internal/domain"
	"github.com/nfrund/remora/internal/middleware"
	"github.com/nfrund/remora/internal/module"
	"github.com/nfrund/remora/internal/modules/notes/archive"
	"github.com/nfrund/remora/internal/rendering"
)

// createRPS caps how fast a single client can create notes.
const createRPS = 5

// ErrNoDatabase is returned by Start when the module has neither an
// injected store nor a database handle to build one from.
var ErrNoDatabase = errors.New("notes: no store and no database handle")

// NotesModule serves the notes UI and API and mounts the archive module
// beneath itself.
type NotesModule struct {
	*module.Node
	deps  Dependencies
	store domain.NoteStore
}

// Dependencies holds the services the notes module needs. The zero value is
// valid: the store is then built from the module's database handle on Start,
// and rendering falls back to the universal renderer.
type Dependencies struct {
	Store    domain.NoteStore
	Renderer rendering.Renderer
}

// New constructs the notes module. It stays inert until activated.
func New(cfg module.Config, deps Dependencies) (*NotesModule, error) {
	m := &NotesModule{deps: deps}
	node, err := module.New(m, cfg)
	if err != nil {
		return nil, err
	}
	m.Node = node
	return m, nil
}

// Start registers the notes routes and loads the archive child.
func (m *NotesModule) Start(ctx context.Context) error {
	m.store = m.deps.Store
	if m.store == nil {
		if m.DB() == nil {
			return ErrNoDatabase
		}
		m.store = NewStore(m.DB())
	}

	renderer := m.deps.Renderer
	if renderer == nil {
		renderer = rendering.NewUniversalRenderer()
	}

	h := &handler{store: m.store, renderer: renderer, log: m.Log()}

	r := m.Router()
	r.GET("", h.Page)
	r.POST("", h.CreateForm, middleware.RateLimiter(createRPS))

	api := r.Group("/api/v1/notes")
	api.GET("", h.List)
	api.POST("", h.Create, middleware.RateLimiter(createRPS))

	m.Log().Info("Notes routes registered")

	// The archive shares this module's store and mounts under it.
	if _, err := m.LoadChild(ctx, func(cfg module.Config) (*archive.Module, error) {
		return archive.New(cfg, m.store)
	}, module.WithName("archive"), module.WithRouterPrefix("/archive")); err != nil {
		return fmt.Errorf("loading archive module: %w", err)
	}
	return nil
}
