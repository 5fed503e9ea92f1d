package domain

import (
	"context"
	"errors"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Note represents a single note in the application domain.
type Note struct {
	ID        *surrealmodels.RecordID       `json:"id,omitempty"`
	Title     string                        `json:"title"`
	Body      string                        `json:"body"`
	Archived  bool                          `json:"archived"`
	CreatedAt *surrealmodels.CustomDateTime `json:"createdAt,omitempty"`
	UpdatedAt *surrealmodels.CustomDateTime `json:"updatedAt,omitempty"`
}

// ErrNoteNotFound is returned when a note lookup matches nothing.
var ErrNoteNotFound = errors.New("note not found")

// NoteStore defines the contract for note storage operations. It lives in
// the domain because it's a requirement OF the domain, not of the database
// implementation.
type NoteStore interface {
	Create(ctx context.Context, title, body string) (*Note, error)
	List(ctx context.Context, limit int) ([]Note, error)
	Archive(ctx context.Context, id string) (*Note, error)
	ListArchived(ctx context.Context, limit int) ([]Note, error)
}
