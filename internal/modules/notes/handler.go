package notes

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/remora/internal/domain"
	"github.com/nfrund/remora/internal/rendering"
	"github.com/nfrund/remora/internal/view"
)

// CreateNoteRequest defines the DTO for the note creation endpoints. The
// same shape binds from JSON and from form posts.
type CreateNoteRequest struct {
	Title string `json:"title" form:"title" validate:"required,min=1,max=120"`
	Body  string `json:"body" form:"body" validate:"max=10000"`
}

// handler serves the notes HTTP surface.
type handler struct {
	store    domain.NoteStore
	renderer rendering.Renderer
	log      *slog.Logger
}

// Page renders the notes UI with the most recent notes.
func (h *handler) Page(c echo.Context) error {
	notes, err := h.store.List(c.Request().Context(), 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load notes").SetInternal(err)
	}

	data := PageData{
		Notes:    notes,
		Flashes:  view.GetFlashData(c),
		FormPath: c.Path(),
		APIPath:  apiPath(c),
	}
	return h.renderer.RenderPage(c, http.StatusOK, NotesPage(data))
}

// Create handles the creation of a new note through the API. htmx requests
// get the re-rendered list fragment back; everything else gets the created
// note as JSON.
func (h *handler) Create(c echo.Context) error {
	var req CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid note").SetInternal(err)
	}

	note, err := h.store.Create(c.Request().Context(), req.Title, req.Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create note").SetInternal(err)
	}
	h.log.Info("Note created", "title", req.Title)

	if c.Request().Header.Get("HX-Request") == "true" {
		notes, err := h.store.List(c.Request().Context(), 50)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load notes").SetInternal(err)
		}
		return h.renderer.RenderPage(c, http.StatusOK, NotesList(notes))
	}
	return c.JSON(http.StatusCreated, note)
}

// CreateForm handles the classic form post: create, flash, redirect back to
// the page.
func (h *handler) CreateForm(c echo.Context) error {
	var req CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form body").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		view.SetFlashError(c, "A note needs a title.")
		return c.Redirect(http.StatusSeeOther, c.Path())
	}

	if _, err := h.store.Create(c.Request().Context(), req.Title, req.Body); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create note").SetInternal(err)
	}

	view.SetFlashSuccess(c, "Note created.")
	return c.Redirect(http.StatusSeeOther, c.Path())
}

// List returns recent notes as JSON.
func (h *handler) List(c echo.Context) error {
	limit := 50
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter").SetInternal(err)
		}
	}

	notes, err := h.store.List(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve notes").SetInternal(err)
	}
	return c.JSON(http.StatusOK, notes)
}

// apiPath resolves the create endpoint relative to wherever the module is
// mounted.
func apiPath(c echo.Context) string {
	return strings.TrimSuffix(c.Path(), "/") + "/api/v1/notes"
}
