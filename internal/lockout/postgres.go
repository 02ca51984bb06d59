package lockout

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/and161185/notekeeper/internal/errs"
)

// PG keeps the lockout state in the users table and mutates it with single
// conditional statements, so concurrent failures cannot lose increments.
type PG struct {
	pool     pgxQuerier
	maxFails int
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed policy. *pgxpool.Pool satisfies pgxQuerier.
func NewPG(pool pgxQuerier) *PG {
	return &PG{pool: pool, maxFails: MaxFailedAttempts}
}

// Failure increments failed_login_attempts and locks at the threshold in one statement.
// The SET expressions see the pre-update row.
func (l *PG) Failure(ctx context.Context, userID uuid.UUID) (bool, error) {
	const q = `
UPDATE users
SET failed_login_attempts = failed_login_attempts + 1,
    is_locked = failed_login_attempts + 1 >= $2,
    updated_at = now()
WHERE id = $1 AND NOT is_locked
RETURNING is_locked`
	var locked bool
	err := l.pool.QueryRow(ctx, q, userID, l.maxFails).Scan(&locked)
	switch {
	case err == nil:
		return locked, nil
	case errors.Is(err, pgx.ErrNoRows):
		// already locked by a concurrent failure
		return true, nil
	default:
		return false, fmt.Errorf("record failed login: %w", err)
	}
}

// Success resets the counter if and only if the account is still unlocked.
func (l *PG) Success(ctx context.Context, userID uuid.UUID) error {
	const q = `
UPDATE users
SET failed_login_attempts = 0, updated_at = now()
WHERE id = $1 AND NOT is_locked`
	tag, err := l.pool.Exec(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("reset failed logins: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrAccountLocked
	}
	return nil
}
