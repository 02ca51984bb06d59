package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/jackc/pgx/v5"
)

// SessionRepo implements SessionRepository using PostgreSQL.
type SessionRepo struct{ db *DB }

// NewSessionRepo constructs a session repository.
func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

// Create stores a new session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `
INSERT INTO sessions (token_hash, user_id, username, email, role, profile_pic, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	id := s.Identity
	if _, err := r.db.Pool.Exec(ctx, q, s.TokenHash, id.UserID, id.Username, id.Email, string(id.Role), id.ProfilePic, s.CreatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get loads a session that has not expired at now.
func (r *SessionRepo) Get(ctx context.Context, tokenHash []byte, now time.Time) (*model.Session, error) {
	const q = `
SELECT token_hash, user_id, username, email, role, profile_pic, created_at, expires_at
FROM sessions WHERE token_hash=$1 AND expires_at > $2`
	var (
		s    model.Session
		role string
	)
	err := r.db.Pool.QueryRow(ctx, q, tokenHash, now).Scan(&s.TokenHash, &s.Identity.UserID, &s.Identity.Username,
		&s.Identity.Email, &role, &s.Identity.ProfilePic, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	s.Identity.Role = model.Role(role)
	return &s, nil
}

// UpdateIdentity replaces the identity snapshot held by the session.
func (r *SessionRepo) UpdateIdentity(ctx context.Context, tokenHash []byte, id model.Identity) error {
	const q = `
UPDATE sessions
SET username = $2, email = $3, role = $4, profile_pic = $5
WHERE token_hash = $1`
	tag, err := r.db.Pool.Exec(ctx, q, tokenHash, id.Username, id.Email, string(id.Role), id.ProfilePic)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a session. Missing rows are not an error.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash []byte) error {
	const q = `DELETE FROM sessions WHERE token_hash=$1`
	if _, err := r.db.Pool.Exec(ctx, q, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions whose expiry is not after now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at <= $1`
	tag, err := r.db.Pool.Exec(ctx, q, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
