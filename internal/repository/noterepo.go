package repository

import (
	"context"

	"github.com/and161185/notekeeper/internal/model"
	"github.com/gofrs/uuid/v5"
)

// NoteRepository provides owner-scoped access to notes.
// A nil owner scope means the caller is an admin and the ownership filter is skipped.
type NoteRepository interface {
	// FindByFilter lists notes newest first with the owner's username joined.
	FindByFilter(ctx context.Context, f model.NoteFilter) ([]model.Note, error)
	// Insert stores a new note.
	Insert(ctx context.Context, n *model.Note) error
	// UpdateScoped changes title/content; errs.ErrNotFound when nothing matched.
	UpdateScoped(ctx context.Context, id uuid.UUID, owner *uuid.UUID, title, content string) (*model.Note, error)
	// DeleteScoped removes a note; errs.ErrNotFound when nothing matched.
	DeleteScoped(ctx context.Context, id uuid.UUID, owner *uuid.UUID) error
	// AggregateTopAuthors counts notes per owner, highest first.
	AggregateTopAuthors(ctx context.Context, limit int) ([]model.AuthorStat, error)
}
