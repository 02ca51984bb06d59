package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/guard"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/repository"
)

// TopAuthorsLimit caps the top-authors report.
const TopAuthorsLimit = 10

// NoteService defines owner-scoped note operations. A nil identity is anonymous.
type NoteService interface {
	// List returns the caller's notes; admins may filter by any owner and title.
	List(ctx context.Context, who *model.Identity, f model.NoteFilter) ([]model.Note, error)
	// Get returns one note the caller may edit.
	Get(ctx context.Context, who *model.Identity, id uuid.UUID) (*model.Note, error)
	// Create stores a note owned by the caller.
	Create(ctx context.Context, who *model.Identity, title, content string) (*model.Note, error)
	// Update changes a note owned by the caller, or any note for admins.
	Update(ctx context.Context, who *model.Identity, id uuid.UUID, title, content string) (*model.Note, error)
	// Delete removes a note owned by the caller, or any note for admins.
	Delete(ctx context.Context, who *model.Identity, id uuid.UUID) error
	// TopAuthors ranks owners by note count. Admin only.
	TopAuthors(ctx context.Context, who *model.Identity) ([]model.AuthorStat, error)
}

type NoteServiceImpl struct {
	repo     repository.NoteRepository
	canTouch guard.Check
	isAdmin  guard.Check
}

// NewNoteService constructs NoteService over repo.
func NewNoteService(repo repository.NoteRepository) *NoteServiceImpl {
	s := &NoteServiceImpl{repo: repo}
	s.canTouch = guard.Chain(guard.Authenticated, guard.OwnerOrAdmin(s.ownerOf))
	s.isAdmin = guard.Chain(guard.Authenticated, guard.AdminOnly)
	return s
}

// List applies the caller's visibility: non-admins only ever see their own notes
// and their filter is replaced.
func (s *NoteServiceImpl) List(ctx context.Context, who *model.Identity, f model.NoteFilter) ([]model.Note, error) {
	if err := guard.Authenticated(ctx, guard.Request{Identity: who}); err != nil {
		return nil, err
	}
	if !who.IsAdmin() {
		owner := who.UserID
		f = model.NoteFilter{OwnerID: &owner}
	}
	return s.repo.FindByFilter(ctx, f)
}

// Get loads a note for editing.
func (s *NoteServiceImpl) Get(ctx context.Context, who *model.Identity, id uuid.UUID) (*model.Note, error) {
	if err := s.canTouch(ctx, guard.Request{Identity: who, ResourceID: id}); err != nil {
		return nil, hideExistence(err)
	}
	notes, err := s.repo.FindByFilter(ctx, model.NoteFilter{ID: &id, OwnerID: scope(who)})
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, errs.ErrNotFoundOrForbidden
	}
	return &notes[0], nil
}

// Create validates and stores a new note for the caller.
func (s *NoteServiceImpl) Create(ctx context.Context, who *model.Identity, title, content string) (*model.Note, error) {
	if err := guard.Authenticated(ctx, guard.Request{Identity: who}); err != nil {
		return nil, err
	}
	title, content, err := validateNote(title, content)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	n := &model.Note{
		ID:        id,
		OwnerID:   who.UserID,
		OwnerName: who.Username,
		Title:     title,
		Content:   content,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Update runs the owner-or-admin guard, then a mutation that is itself scoped
// to the owner for non-admins.
func (s *NoteServiceImpl) Update(ctx context.Context, who *model.Identity, id uuid.UUID, title, content string) (*model.Note, error) {
	if err := s.canTouch(ctx, guard.Request{Identity: who, ResourceID: id}); err != nil {
		return nil, hideExistence(err)
	}
	title, content, err := validateNote(title, content)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.UpdateScoped(ctx, id, scope(who), title, content)
	if err != nil {
		return nil, hideExistence(err)
	}
	return n, nil
}

// Delete removes a note. Missing and foreign notes give the same error.
func (s *NoteServiceImpl) Delete(ctx context.Context, who *model.Identity, id uuid.UUID) error {
	if err := s.canTouch(ctx, guard.Request{Identity: who, ResourceID: id}); err != nil {
		return hideExistence(err)
	}
	return hideExistence(s.repo.DeleteScoped(ctx, id, scope(who)))
}

// TopAuthors returns up to TopAuthorsLimit owners by note count.
func (s *NoteServiceImpl) TopAuthors(ctx context.Context, who *model.Identity) ([]model.AuthorStat, error) {
	if err := s.isAdmin(ctx, guard.Request{Identity: who}); err != nil {
		return nil, err
	}
	return s.repo.AggregateTopAuthors(ctx, TopAuthorsLimit)
}

func (s *NoteServiceImpl) ownerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	notes, err := s.repo.FindByFilter(ctx, model.NoteFilter{ID: &id})
	if err != nil {
		return uuid.Nil, err
	}
	if len(notes) == 0 {
		return uuid.Nil, errs.ErrNotFound
	}
	return notes[0].OwnerID, nil
}

// scope returns nil for admins, which lifts the owner filter.
func scope(who *model.Identity) *uuid.UUID {
	if who.IsAdmin() {
		return nil
	}
	owner := who.UserID
	return &owner
}

func hideExistence(err error) error {
	if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrForbidden) {
		return errs.ErrNotFoundOrForbidden
	}
	return err
}

func validateNote(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", "", errs.Validation("Title and content are required")
	}
	return title, content, nil
}
