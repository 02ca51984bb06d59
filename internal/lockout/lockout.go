// Package lockout tracks failed logins per account and locks accounts that exceed the threshold.
package lockout

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

// MaxFailedAttempts is the number of consecutive failures after which an account is locked.
// The users table CHECK constraint relies on the same value.
const MaxFailedAttempts = 5

// Policy moves an account through Unlocked(0..4) -> Locked.
// There is no unlock transition.
type Policy interface {
	// Failure records a failed verification and reports whether the account is now locked.
	Failure(ctx context.Context, userID uuid.UUID) (locked bool, err error)
	// Success resets the counter. It fails with errs.ErrAccountLocked if the account
	// was locked concurrently.
	Success(ctx context.Context, userID uuid.UUID) error
}
