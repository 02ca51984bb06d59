package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

func who(name string, role model.Role) *model.Identity {
	return &model.Identity{UserID: uuid.Must(uuid.NewV4()), Username: name, Role: role}
}

func TestCreate_ValidatesAndOwns(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	u := who("u", model.RoleUser)

	_, err := svc.Create(context.Background(), u, "  ", "body")
	require.ErrorIs(t, err, errs.ErrValidation)
	require.EqualError(t, err, "Title and content are required")
	_, err = svc.Create(context.Background(), u, "title", "")
	require.ErrorIs(t, err, errs.ErrValidation)

	n, err := svc.Create(context.Background(), u, " title ", " body ")
	require.NoError(t, err)
	require.Equal(t, u.UserID, n.OwnerID)
	require.Equal(t, "title", n.Title)
	require.Equal(t, "body", n.Content)
	require.False(t, n.CreatedAt.IsZero())

	_, err = svc.Create(context.Background(), nil, "t", "c")
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestList_NonAdminSeesOnlyOwn(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	ctx := context.Background()
	u, v := who("u", model.RoleUser), who("v", model.RoleUser)

	_, err := svc.Create(ctx, u, "u note", "c")
	require.NoError(t, err)
	_, err = svc.Create(ctx, v, "v note", "c")
	require.NoError(t, err)

	// a non-admin's filter is ignored, including an explicit owner
	notes, err := svc.List(ctx, u, model.NoteFilter{OwnerID: &v.UserID, Search: "v"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, u.UserID, notes[0].OwnerID)

	_, err = svc.List(ctx, nil, model.NoteFilter{})
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestList_AdminFilters(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	ctx := context.Background()
	admin, u, v := who("admin", model.RoleAdmin), who("u", model.RoleUser), who("v", model.RoleUser)

	for _, title := range []string{"Groceries", "Work plan"} {
		_, err := svc.Create(ctx, u, title, "c")
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, v, "more groceries", "c")
	require.NoError(t, err)

	all, err := svc.List(ctx, admin, model.NoteFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "more groceries", all[0].Title)

	byOwner, err := svc.List(ctx, admin, model.NoteFilter{OwnerID: &u.UserID})
	require.NoError(t, err)
	require.Len(t, byOwner, 2)

	bySearch, err := svc.List(ctx, admin, model.NoteFilter{Search: "GROCER"})
	require.NoError(t, err)
	require.Len(t, bySearch, 2)
}

func TestUpdate_Ownership(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	ctx := context.Background()
	owner, stranger, admin := who("u", model.RoleUser), who("v", model.RoleUser), who("a", model.RoleAdmin)

	n, err := svc.Create(ctx, owner, "t", "c")
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger, n.ID, "hijack", "x")
	require.ErrorIs(t, err, errs.ErrNotFoundOrForbidden)
	require.Equal(t, "t", repo.notes[n.ID].Title)

	got, err := svc.Update(ctx, owner, n.ID, "t2", "c2")
	require.NoError(t, err)
	require.Equal(t, "t2", got.Title)

	got, err = svc.Update(ctx, admin, n.ID, "t3", "c3")
	require.NoError(t, err)
	require.Equal(t, "t3", got.Title)
	require.Equal(t, owner.UserID, repo.notes[n.ID].OwnerID)

	_, err = svc.Update(ctx, owner, n.ID, "", "c")
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.Update(ctx, owner, uuid.Must(uuid.NewV4()), "t", "c")
	require.ErrorIs(t, err, errs.ErrNotFoundOrForbidden)

	_, err = svc.Update(ctx, nil, n.ID, "t", "c")
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestDelete_IdenticalOutcomeForMissingAndForeign(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	ctx := context.Background()
	u, v, admin := who("u", model.RoleUser), who("v", model.RoleUser), who("a", model.RoleAdmin)

	n, err := svc.Create(ctx, u, "N", "c")
	require.NoError(t, err)

	errForeign := svc.Delete(ctx, v, n.ID)
	errMissing := svc.Delete(ctx, v, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, errForeign, errs.ErrNotFoundOrForbidden)
	require.ErrorIs(t, errMissing, errs.ErrNotFoundOrForbidden)
	require.Equal(t, errs.KindOf(errForeign), errs.KindOf(errMissing))
	require.Contains(t, repo.notes, n.ID)

	require.NoError(t, svc.Delete(ctx, admin, n.ID))
	require.NotContains(t, repo.notes, n.ID)

	// already deleted
	require.ErrorIs(t, svc.Delete(ctx, u, n.ID), errs.ErrNotFoundOrForbidden)
}

func TestDelete_OwnerSucceeds(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	u := who("u", model.RoleUser)
	n, err := svc.Create(context.Background(), u, "t", "c")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), u, n.ID))
}

func TestGet_ScopedAndStoreErrors(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	ctx := context.Background()
	u, v, admin := who("u", model.RoleUser), who("v", model.RoleUser), who("a", model.RoleAdmin)

	n, err := svc.Create(ctx, u, "t", "c")
	require.NoError(t, err)

	got, err := svc.Get(ctx, u, n.ID)
	require.NoError(t, err)
	require.Equal(t, n.ID, got.ID)

	_, err = svc.Get(ctx, admin, n.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, v, n.ID)
	require.ErrorIs(t, err, errs.ErrNotFoundOrForbidden)

	repo.findErr = errors.New("db down")
	_, err = svc.Get(ctx, u, n.ID)
	require.Error(t, err)
	require.Equal(t, errs.KindInternal, errs.KindOf(err))
}

func TestTopAuthors(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	ctx := context.Background()
	u1, u2, u3 := who("u1", model.RoleUser), who("u2", model.RoleUser), who("u3", model.RoleUser)
	admin := who("admin", model.RoleAdmin)

	for author, count := range map[*model.Identity]int{u1: 3, u2: 1, u3: 5} {
		for i := 0; i < count; i++ {
			_, err := svc.Create(ctx, author, "t", "c")
			require.NoError(t, err)
		}
	}

	stats, err := svc.TopAuthors(ctx, admin)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	require.Equal(t, "u3", stats[0].Username)
	require.Equal(t, int64(5), stats[0].NoteCount)
	require.Equal(t, "u1", stats[1].Username)
	require.Equal(t, "u2", stats[2].Username)

	_, err = svc.TopAuthors(ctx, u1)
	require.ErrorIs(t, err, errs.ErrForbidden)
	_, err = svc.TopAuthors(ctx, nil)
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestTopAuthors_LimitedToTen(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := svc.Create(ctx, who("author", model.RoleUser), "t", "c")
		require.NoError(t, err)
	}
	stats, err := svc.TopAuthors(ctx, who("admin", model.RoleAdmin))
	require.NoError(t, err)
	require.Len(t, stats, TopAuthorsLimit)
}

func TestList_AdminOwnFilterExcludesOthers(t *testing.T) {
	repo := newFakeNotes()
	svc := NewNoteService(repo)
	ctx := context.Background()
	admin, u := who("admin", model.RoleAdmin), who("u", model.RoleUser)

	_, err := svc.Create(ctx, u, "u-note", "c")
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, "admin-note", "c")
	require.NoError(t, err)

	own, err := svc.List(ctx, admin, model.NoteFilter{OwnerID: &admin.UserID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "admin-note", own[0].Title)
}
