// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/notekeeper/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByEmail loads a user by email; errs.ErrNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByID loads a user by ID; errs.ErrNotFound if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// Insert creates a user. Duplicate email yields errs.ErrConflict; a second admin
	// yields errs.ErrAdminExists.
	Insert(ctx context.Context, u *model.User) error
	// Update persists username, email, password hash and profile picture.
	Update(ctx context.Context, u *model.User) error
}
