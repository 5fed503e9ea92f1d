package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/nfrund/remora/internal/database"
	"github.com/nfrund/remora/internal/domain"
)

// surrealStore implements domain.NoteStore on top of SurrealDB.
type surrealStore struct {
	db *surrealdb.DB
}

// NewStore creates a note store backed by the given database handle.
func NewStore(db *surrealdb.DB) domain.NoteStore {
	return &surrealStore{db: db}
}

// Create saves a new note and returns it as stored.
func (s *surrealStore) Create(ctx context.Context, title, body string) (*domain.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", database.ErrInvalidInput)
	}

	query := "CREATE note SET title = $title, body = $body, archived = false, createdAt = time::now(), updatedAt = time::now() RETURN AFTER"
	params := map[string]any{
		"title": title,
		"body":  body,
	}

	created, err := database.QueryOne[domain.Note](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("note was not created or could not be fetched")
	}
	return created, nil
}

// List returns the most recent active notes, newest first.
func (s *surrealStore) List(ctx context.Context, limit int) ([]domain.Note, error) {
	query := "SELECT * FROM note WHERE archived = false ORDER BY createdAt DESC LIMIT $limit"
	notes, err := database.Query[domain.Note](ctx, s.db, query, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// Archive flips a note out of the active list and returns the updated
// record. It accepts the bare record key or the full "note:key" form and
// returns domain.ErrNoteNotFound when nothing matches.
func (s *surrealStore) Archive(ctx context.Context, id string) (*domain.Note, error) {
	key := strings.TrimPrefix(id, "note:")
	if key == "" {
		return nil, fmt.Errorf("%w: id is required", database.ErrInvalidInput)
	}
	record := surrealmodels.NewRecordID("note", key)

	query := "UPDATE note SET archived = true, updatedAt = time::now() WHERE id = $id RETURN AFTER"
	updated, err := database.QueryOne[domain.Note](ctx, s.db, query, map[string]any{"id": record})
	if err != nil {
		return nil, fmt.Errorf("archiving note %s: %w", id, err)
	}
	if updated == nil {
		return nil, domain.ErrNoteNotFound
	}
	return updated, nil
}

// ListArchived returns archived notes, most recently archived first.
func (s *surrealStore) ListArchived(ctx context.Context, limit int) ([]domain.Note, error) {
	query := "SELECT * FROM note WHERE archived = true ORDER BY updatedAt DESC LIMIT $limit"
	notes, err := database.Query[domain.Note](ctx, s.db, query, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("listing archived notes: %w", err)
	}
	return notes, nil
}
