// Package guard holds composable authorization checks evaluated before an
// operation touches the store.
package guard

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

// Request is what a check sees: the caller identity (nil when anonymous) and
// the target resource, if any.
type Request struct {
	Identity   *model.Identity
	ResourceID uuid.UUID
}

// Check returns nil to allow the request.
type Check func(ctx context.Context, r Request) error

// OwnerLookup resolves the owner of a resource; errs.ErrNotFound when it does not exist.
type OwnerLookup func(ctx context.Context, resourceID uuid.UUID) (uuid.UUID, error)

// Chain runs checks in order and stops at the first failure.
func Chain(checks ...Check) Check {
	return func(ctx context.Context, r Request) error {
		for _, c := range checks {
			if err := c(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}
}

// Authenticated requires a session identity.
func Authenticated(_ context.Context, r Request) error {
	if r.Identity == nil {
		return errs.ErrUnauthenticated
	}
	return nil
}

// AdminOnly requires the admin role.
func AdminOnly(_ context.Context, r Request) error {
	if r.Identity == nil || !r.Identity.IsAdmin() {
		return errs.ErrForbidden
	}
	return nil
}

// OwnerOrAdmin loads the resource owner and lets through the owner or any admin.
func OwnerOrAdmin(lookup OwnerLookup) Check {
	return func(ctx context.Context, r Request) error {
		if r.Identity == nil {
			return errs.ErrForbidden
		}
		owner, err := lookup(ctx, r.ResourceID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if r.Identity.IsAdmin() || owner == r.Identity.UserID {
			return nil
		}
		return errs.ErrForbidden
	}
}
