package notes_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/remora/internal/database"
	"github.com/nfrund/remora/internal/domain"
	"github.com/nfrund/remora/internal/modules/notes"
	"github.com/nfrund/remora/internal/testutils"
)

// requireTestEnv skips the test unless a .env.test exists at the project
// root: the store tests need a live SurrealDB to talk to.
func requireTestEnv(t *testing.T) {
	t.Helper()

	path, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			break
		}
		if path == filepath.Dir(path) {
			t.Skip("no project root found")
		}
		path = filepath.Dir(path)
	}

	if _, err := os.Stat(filepath.Join(path, ".env.test")); err != nil {
		t.Skip("integration test: .env.test not present")
	}
}

func TestSurrealStore(t *testing.T) {
	requireTestEnv(t)

	cfg := testutils.ConfigForTests(t)
	ctx := context.Background()

	db, err := database.NewDB(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })

	store := notes.NewStore(db)

	// Each run tags its rows with a unique marker so the test can share a
	// database with other runs and still clean up after itself.
	marker := uuid.NewString()
	t.Cleanup(func() {
		_, _ = database.Query[domain.Note](context.Background(), db,
			"DELETE note WHERE body = $marker", map[string]any{"marker": marker})
	})

	created, err := store.Create(ctx, "Integration note", marker)
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.Equal(t, "Integration note", created.Title)
	assert.False(t, created.Archived)
	require.NotNil(t, created.CreatedAt)

	t.Run("active list contains the new note", func(t *testing.T) {
		list, err := store.List(ctx, 500)
		require.NoError(t, err)
		assert.NotEmpty(t, withBody(list, marker))
	})

	t.Run("archiving moves it to the archived list", func(t *testing.T) {
		archived, err := store.Archive(ctx, created.ID.String())
		require.NoError(t, err)
		assert.True(t, archived.Archived)

		list, err := store.List(ctx, 500)
		require.NoError(t, err)
		assert.Empty(t, withBody(list, marker))

		archivedList, err := store.ListArchived(ctx, 500)
		require.NoError(t, err)
		assert.NotEmpty(t, withBody(archivedList, marker))
	})

	t.Run("archiving an unknown id reports not found", func(t *testing.T) {
		_, err := store.Archive(ctx, "note:doesnotexist")
		assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	})
}

func withBody(list []domain.Note, body string) []domain.Note {
	var out []domain.Note
	for _, n := range list {
		if n.Body == body {
			out = append(out, n)
		}
	}
	return out
}
