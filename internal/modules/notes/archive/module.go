package archive

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/remora/internal/domain"
	"github.com/nfrund/remora/internal/module"
)

// Store is the slice of the notes store the archive needs.
type Store interface {
	Archive(ctx context.Context, id string) (*domain.Note, error)
	ListArchived(ctx context.Context, limit int) ([]domain.Note, error)
}

// Module serves the archived side of the notes tree. It is loaded as a
// child of the notes module and shares its store.
type Module struct {
	*module.Node
	store Store
}

// New constructs the archive module around the parent's store.
func New(cfg module.Config, store Store) (*Module, error) {
	if store == nil {
		return nil, errors.New("archive: store is required")
	}

	m := &Module{store: store}
	node, err := module.New(m, cfg)
	if err != nil {
		return nil, err
	}
	m.Node = node
	return m, nil
}

// Start registers the archive routes.
func (m *Module) Start(ctx context.Context) error {
	r := m.Router()
	r.GET("", m.list)
	r.POST("/:id", m.archive)

	m.Log().Info("Archive routes registered")
	return nil
}

func (m *Module) list(c echo.Context) error {
	notes, err := m.store.ListArchived(c.Request().Context(), 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve archived notes").SetInternal(err)
	}
	return c.JSON(http.StatusOK, notes)
}

func (m *Module) archive(c echo.Context) error {
	note, err := m.store.Archive(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Note not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to archive note").SetInternal(err)
	}
	return c.JSON(http.StatusOK, note)
}
