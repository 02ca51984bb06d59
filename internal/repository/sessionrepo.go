package repository

import (
	"context"
	"time"

	"github.com/and161185/notekeeper/internal/model"
)

// SessionRepository stores server-side sessions keyed by token hash.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	// Get returns a non-expired session; errs.ErrNotFound otherwise.
	Get(ctx context.Context, tokenHash []byte, now time.Time) (*model.Session, error)
	UpdateIdentity(ctx context.Context, tokenHash []byte, id model.Identity) error
	// Delete is idempotent.
	Delete(ctx context.Context, tokenHash []byte) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
