// Package convert maps domain models to the JSON views returned by the HTTP layer.
package convert

import (
	"fmt"
	"strings"
	"time"

	model "github.com/and161185/notekeeper/internal/model"
	u "github.com/gofrs/uuid/v5"
)

// --- helpers ---

func ts(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// ParseID parses a path or query identifier.
func ParseID(s string) (u.UUID, error) {
	id, err := u.FromString(strings.TrimSpace(s))
	if err != nil {
		return u.Nil, fmt.Errorf("bad id %q: %w", s, err)
	}
	return id, nil
}

// ParseOptionalID returns nil for an empty string.
func ParseOptionalID(s string) (*u.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := ParseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// --- identity ---

// IdentityView is the session identity as shown to its owner.
type IdentityView struct {
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// ToIdentityView converts a session identity.
func ToIdentityView(id model.Identity) IdentityView {
	return IdentityView{
		UserID:     id.UserID.String(),
		Username:   id.Username,
		Email:      id.Email,
		Role:       string(id.Role),
		ProfilePic: id.ProfilePic,
	}
}

// --- user ---

// UserView exposes profile fields only; the password hash and lockout counters never leave the server.
type UserView struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	ProfilePic string     `json:"profilePic,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// ToUserView converts a stored user.
func ToUserView(in *model.User) *UserView {
	if in == nil {
		return nil
	}
	return &UserView{
		ID:         in.ID.String(),
		Username:   in.Username,
		Email:      in.Email,
		Role:       string(in.Role),
		ProfilePic: in.ProfilePic,
		CreatedAt:  ts(in.CreatedAt),
	}
}

// --- notes ---

// NoteView is a note with its author's name.
type NoteView struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"userId"`
	OwnerName string     `json:"username,omitempty"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ToNoteView converts a single note.
func ToNoteView(in *model.Note) *NoteView {
	if in == nil {
		return nil
	}
	return &NoteView{
		ID:        in.ID.String(),
		OwnerID:   in.OwnerID.String(),
		OwnerName: in.OwnerName,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: ts(in.CreatedAt),
		UpdatedAt: ts(in.UpdatedAt),
	}
}

// ToNoteViews converts a list, never returning nil.
func ToNoteViews(in []model.Note) []NoteView {
	out := make([]NoteView, 0, len(in))
	for i := range in {
		out = append(out, *ToNoteView(&in[i]))
	}
	return out
}

// --- aggregation ---

// AuthorView is one row of the top-authors report.
type AuthorView struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	PostCount int64  `json:"postCount"`
}

// ToAuthorViews converts the aggregation result, keeping its order.
func ToAuthorViews(in []model.AuthorStat) []AuthorView {
	out := make([]AuthorView, 0, len(in))
	for _, s := range in {
		out = append(out, AuthorView{UserID: s.UserID.String(), Username: s.Username, PostCount: s.NoteCount})
	}
	return out
}
