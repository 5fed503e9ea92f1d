package notes_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/nfrund/remora/internal/domain"
	"github.com/nfrund/remora/internal/handlers"
	"github.com/nfrund/remora/internal/module"
	"github.com/nfrund/remora/internal/modules/notes"
)

// fakeStore is an in-memory domain.NoteStore.
type fakeStore struct {
	mu    sync.Mutex
	notes []domain.Note
	seq   int
}

func (s *fakeStore) Create(ctx context.Context, title, body string) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := surrealmodels.NewRecordID("note", fmt.Sprintf("n%d", s.seq))
	n := domain.Note{ID: &id, Title: title, Body: body}
	s.notes = append(s.notes, n)
	return &n, nil
}

func (s *fakeStore) List(ctx context.Context, limit int) ([]domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Note{}
	for _, n := range s.notes {
		if !n.Archived {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) Archive(ctx context.Context, id string) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimPrefix(id, "note:")
	for i := range s.notes {
		if s.notes[i].ID != nil && s.notes[i].ID.ID == key {
			s.notes[i].Archived = true
			n := s.notes[i]
			return &n, nil
		}
	}
	return nil, domain.ErrNoteNotFound
}

func (s *fakeStore) ListArchived(ctx context.Context, limit int) ([]domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Note{}
	for _, n := range s.notes {
		if n.Archived {
			out = append(out, n)
		}
	}
	return out, nil
}

// newNotesEnv mounts an activated notes module under /notes on a fresh echo
// instance wired the way the server wires it.
func newNotesEnv(t *testing.T, store domain.NoteStore) (*echo.Echo, *notes.NotesModule) {
	t.Helper()

	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test-secret"))))

	cfg := module.DefaultConfig(e)
	cfg.RouterPrefix = "/notes"

	m, err := notes.New(cfg, notes.Dependencies{Store: store})
	require.NoError(t, err)
	require.NoError(t, module.Activate(context.Background(), m))
	return e, m
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestModuleTree(t *testing.T) {
	store := &fakeStore{}
	_, m := newNotesEnv(t, store)

	assert.Equal(t, "notes", m.Name())
	assert.True(t, m.Started())

	child, ok := m.Child("archive")
	require.True(t, ok, "archive child should be attached")
	assert.Equal(t, "archive", child.Name())
	assert.Same(t, m, child.(interface{ Parent() module.Module }).Parent())
}

func TestPage(t *testing.T) {
	store := &fakeStore{}
	_, err := store.Create(context.Background(), "First note", "hello")
	require.NoError(t, err)

	e, _ := newNotesEnv(t, store)

	rec := do(e, httptest.NewRequest(http.MethodGet, "/notes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Notes</title>")
	assert.Contains(t, body, "First note")
	assert.Contains(t, body, `action="/notes"`)
	assert.Contains(t, body, `hx-post="/notes/api/v1/notes"`)
	assert.Contains(t, body, `id="notes-list"`)
}

func TestCreateAPI(t *testing.T) {
	t.Run("json request gets the note back", func(t *testing.T) {
		store := &fakeStore{}
		e, _ := newNotesEnv(t, store)

		req := httptest.NewRequest(http.MethodPost, "/notes/api/v1/notes",
			strings.NewReader(`{"title":"Groceries","body":"milk"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		rec := do(e, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var got domain.Note
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Groceries", got.Title)

		listed, err := store.List(context.Background(), 50)
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})

	t.Run("htmx request gets the list fragment back", func(t *testing.T) {
		store := &fakeStore{}
		e, _ := newNotesEnv(t, store)

		req := httptest.NewRequest(http.MethodPost, "/notes/api/v1/notes",
			strings.NewReader(`{"title":"Groceries","body":"milk"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("HX-Request", "true")

		rec := do(e, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `id="notes-list"`)
		assert.Contains(t, rec.Body.String(), "Groceries")
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		store := &fakeStore{}
		e, _ := newNotesEnv(t, store)

		req := httptest.NewRequest(http.MethodPost, "/notes/api/v1/notes",
			strings.NewReader(`{"title":"","body":"milk"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		rec := do(e, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		listed, err := store.List(context.Background(), 50)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}

func TestCreateForm(t *testing.T) {
	store := &fakeStore{}
	e, _ := newNotesEnv(t, store)

	form := url.Values{"title": {"From the form"}, "body": {"posted"}}
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	rec := do(e, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/notes", rec.Header().Get(echo.HeaderLocation))

	// Follow the redirect with the session cookie to pick up the flash.
	followUp := httptest.NewRequest(http.MethodGet, "/notes", nil)
	for _, cookie := range rec.Result().Cookies() {
		followUp.AddCookie(cookie)
	}

	pageRec := do(e, followUp)
	require.Equal(t, http.StatusOK, pageRec.Code)
	assert.Contains(t, pageRec.Body.String(), "Note created.")
	assert.Contains(t, pageRec.Body.String(), "From the form")
}

func TestCreateFormInvalid(t *testing.T) {
	store := &fakeStore{}
	e, _ := newNotesEnv(t, store)

	form := url.Values{"title": {""}, "body": {"no title"}}
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	rec := do(e, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	followUp := httptest.NewRequest(http.MethodGet, "/notes", nil)
	for _, cookie := range rec.Result().Cookies() {
		followUp.AddCookie(cookie)
	}

	pageRec := do(e, followUp)
	require.Equal(t, http.StatusOK, pageRec.Code)
	assert.Contains(t, pageRec.Body.String(), "A note needs a title.")

	listed, err := store.List(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, listed, "invalid form post should not create a note")
}

func TestArchiveFlow(t *testing.T) {
	store := &fakeStore{}
	_, err := store.Create(context.Background(), "keep", "stays active")
	require.NoError(t, err)
	_, err = store.Create(context.Background(), "done", "to be archived")
	require.NoError(t, err)

	e, _ := newNotesEnv(t, store)

	t.Run("archives by id", func(t *testing.T) {
		rec := do(e, httptest.NewRequest(http.MethodPost, "/notes/archive/n2", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Note
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Archived)
		assert.Equal(t, "done", got.Title)
	})

	t.Run("archived notes leave the active list", func(t *testing.T) {
		rec := do(e, httptest.NewRequest(http.MethodGet, "/notes/api/v1/notes", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "keep")
		assert.NotContains(t, rec.Body.String(), "done")
	})

	t.Run("archive list serves the archived notes", func(t *testing.T) {
		rec := do(e, httptest.NewRequest(http.MethodGet, "/notes/archive", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "done")
		assert.NotContains(t, rec.Body.String(), "keep")
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		rec := do(e, httptest.NewRequest(http.MethodPost, "/notes/archive/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateRateLimited(t *testing.T) {
	store := &fakeStore{}
	e, _ := newNotesEnv(t, store)

	var rejected int
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/notes/api/v1/notes",
			strings.NewReader(fmt.Sprintf(`{"title":"note %d"}`, i)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		if do(e, req).Code == http.StatusTooManyRequests {
			rejected++
		}
	}
	assert.Positive(t, rejected, "a burst of creates should trip the rate limiter")
}

func TestStartWithoutDatabase(t *testing.T) {
	e := echo.New()

	m, err := notes.New(module.DefaultConfig(e), notes.Dependencies{})
	require.NoError(t, err)

	err = module.Activate(context.Background(), m)
	require.Error(t, err)
	assert.ErrorIs(t, err, notes.ErrNoDatabase)
	assert.False(t, m.Started(), "a failed start should leave the module stopped")
}
