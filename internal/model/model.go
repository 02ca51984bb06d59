// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// User represents an account stored on the server. The password is only kept as a bcrypt hash.
type User struct {
	ID                  uuid.UUID
	Username            string
	Email               string // unique
	PasswordHash        string
	ProfilePic          string // optional, path under /uploads
	Role                Role
	FailedLoginAttempts int
	IsLocked            bool // implies FailedLoginAttempts >= 5
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Identity is the session-held snapshot of an authenticated user.
// It is replaced wholesale on login and profile edits, never mutated in place.
type Identity struct {
	UserID     uuid.UUID
	Username   string
	Email      string
	Role       Role
	ProfilePic string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// IdentityOf builds a fresh snapshot from the persisted user.
func IdentityOf(u *User) Identity {
	return Identity{
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		ProfilePic: u.ProfilePic,
	}
}

// Session is a server-side login record keyed by the hash of its opaque token.
type Session struct {
	TokenHash []byte
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Note is a single user-owned note.
type Note struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	OwnerName string // joined from users, read-only
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteFilter narrows FindByFilter. Nil/empty fields do not filter.
type NoteFilter struct {
	ID      *uuid.UUID
	OwnerID *uuid.UUID
	Search  string // case-insensitive title substring
}

// AuthorStat is one row of the top-authors aggregation.
type AuthorStat struct {
	UserID    uuid.UUID
	Username  string
	NoteCount int64
}

// Registration is the raw registration form.
type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	ProfilePic      string
	Role            string // advisory only
}

// ProfileUpdate is the raw profile form. A password change is requested when
// NewPassword or ConfirmNewPassword is non-empty.
type ProfileUpdate struct {
	Username           string
	Email              string
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
	ProfilePic         *string // nil keeps the current picture
}
