package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, password_hash, profile_pic, role, failed_login_attempts, is_locked, created_at, updated_at`

// Insert adds a new user row. The unique constraints make both the email check
// and the admin bootstrap atomic.
func (r *UserRepo) Insert(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, email, password_hash, profile_pic, role)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, u.ID, u.Username, u.Email, u.PasswordHash, u.ProfilePic, string(u.Role)).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapWriteErr("insert user", err)
	}
	return nil
}

// FindByID selects a user by ID.
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// FindByEmail selects a user by email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

// Update writes the profile fields. Lockout columns are owned by the lockout policy.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	const q = `
UPDATE users
SET username = $2, email = $3, password_hash = $4, profile_pic = $5, updated_at = now()
WHERE id = $1
RETURNING updated_at`
	err := r.db.Pool.QueryRow(ctx, q, u.ID, u.Username, u.Email, u.PasswordHash, u.ProfilePic).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	if err != nil {
		return mapWriteErr("update user", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ProfilePic, &role,
		&u.FailedLoginAttempts, &u.IsLocked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = model.Role(role)
	if !u.Role.Valid() {
		return nil, fmt.Errorf("scan user %s: unknown role %q", u.ID, role)
	}
	return &u, nil
}

func mapWriteErr(op string, err error) error {
	if name, ok := uniqueViolation(err); ok {
		switch name {
		case constraintSingleAdmin:
			return errs.ErrAdminExists // сервис повторит вставку как user
		case constraintEmailUnique:
			return errs.ErrConflict
		default:
			return fmt.Errorf("%s: unexpected unique violation on %q: %w", op, name, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
