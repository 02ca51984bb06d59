package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// NoteRepo implements NoteRepository using PostgreSQL.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindByFilter lists notes matching every non-empty filter field, newest first.
func (r *NoteRepo) FindByFilter(ctx context.Context, f model.NoteFilter) ([]model.Note, error) {
	var (
		conds []string
		args  []any
	)
	if f.ID != nil {
		args = append(args, *f.ID)
		conds = append(conds, fmt.Sprintf("n.id = $%d", len(args)))
	}
	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		conds = append(conds, fmt.Sprintf("n.user_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+likeEscaper.Replace(s)+"%")
		conds = append(conds, fmt.Sprintf(`n.title ILIKE $%d ESCAPE '\'`, len(args)))
	}

	q := `
SELECT n.id, n.user_id, u.username, n.title, n.content, n.created_at, n.updated_at
FROM notes n JOIN users u ON u.id = n.user_id`
	if len(conds) > 0 {
		q += "\nWHERE " + strings.Join(conds, " AND ")
	}
	q += "\nORDER BY n.created_at DESC"

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	out := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.OwnerName, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Insert stores a new note and fills its timestamps.
func (r *NoteRepo) Insert(ctx context.Context, n *model.Note) error {
	const q = `
INSERT INTO notes (id, user_id, title, content)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at`
	if err := r.db.Pool.QueryRow(ctx, q, n.ID, n.OwnerID, n.Title, n.Content).Scan(&n.CreatedAt, &n.UpdatedAt); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// UpdateScoped updates a note; with a non-nil owner only that owner's note can match.
func (r *NoteRepo) UpdateScoped(ctx context.Context, id uuid.UUID, owner *uuid.UUID, title, content string) (*model.Note, error) {
	const q = `
UPDATE notes
SET title = $3, content = $4, updated_at = now()
WHERE id = $1 AND ($2::uuid IS NULL OR user_id = $2)
RETURNING id, user_id, title, content, created_at, updated_at`
	var n model.Note
	err := r.db.Pool.QueryRow(ctx, q, id, ownerArg(owner), title, content).
		Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return &n, nil
}

// DeleteScoped deletes a note with the same scoping rule as UpdateScoped.
func (r *NoteRepo) DeleteScoped(ctx context.Context, id uuid.UUID, owner *uuid.UUID) error {
	const q = `DELETE FROM notes WHERE id = $1 AND ($2::uuid IS NULL OR user_id = $2)`
	tag, err := r.db.Pool.Exec(ctx, q, id, ownerArg(owner))
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AggregateTopAuthors groups notes by owner in a single statement.
func (r *NoteRepo) AggregateTopAuthors(ctx context.Context, limit int) ([]model.AuthorStat, error) {
	const q = `
SELECT n.user_id, u.username, COUNT(*) AS note_count
FROM notes n JOIN users u ON u.id = n.user_id
GROUP BY n.user_id, u.username
ORDER BY note_count DESC, u.username ASC
LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("aggregate top authors: %w", err)
	}
	defer rows.Close()

	out := []model.AuthorStat{}
	for rows.Next() {
		var s model.AuthorStat
		if err := rows.Scan(&s.UserID, &s.Username, &s.NoteCount); err != nil {
			return nil, fmt.Errorf("scan author stat: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func ownerArg(owner *uuid.UUID) any {
	if owner == nil {
		return nil
	}
	return *owner
}
