package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/notekeeper/internal/crypto"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/lockout"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/repository"
)

// fakeUsers mimics the users table, including its unique indexes.
type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.User

	findErr   error
	updateErr error
	inserts   int
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uuid.UUID]*model.User{}} }

func (f *fakeUsers) Insert(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	for _, x := range f.byID {
		if x.Email == u.Email {
			return errs.ErrConflict
		}
		if u.Role == model.RoleAdmin && x.Role == model.RoleAdmin {
			return errs.ErrAdminExists
		}
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	c := *u
	f.byID[u.ID] = &c
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	cur, ok := f.byID[u.ID]
	if !ok {
		return errs.ErrNotFound
	}
	for id, x := range f.byID {
		if id != u.ID && x.Email == u.Email {
			return errs.ErrConflict
		}
	}
	cur.Username, cur.Email, cur.PasswordHash, cur.ProfilePic = u.Username, u.Email, u.PasswordHash, u.ProfilePic
	return nil
}

func (f *fakeUsers) get(id uuid.UUID) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

// fakeLockout applies the same conditional updates as the postgres policy.
type fakeLockout struct{ users *fakeUsers }

var _ lockout.Policy = fakeLockout{}

func (l fakeLockout) Failure(_ context.Context, id uuid.UUID) (bool, error) {
	l.users.mu.Lock()
	defer l.users.mu.Unlock()
	u, ok := l.users.byID[id]
	if !ok || u.IsLocked {
		return true, nil
	}
	u.FailedLoginAttempts++
	u.IsLocked = u.FailedLoginAttempts >= lockout.MaxFailedAttempts
	return u.IsLocked, nil
}

func (l fakeLockout) Success(_ context.Context, id uuid.UUID) error {
	l.users.mu.Lock()
	defer l.users.mu.Unlock()
	u, ok := l.users.byID[id]
	if !ok || u.IsLocked {
		return errs.ErrAccountLocked
	}
	u.FailedLoginAttempts = 0
	return nil
}

// countingHasher records Verify calls.
type countingHasher struct {
	pkgcrypto.Hasher
	verifies atomic.Int32
}

func (h *countingHasher) Verify(plain, hash string) (bool, error) {
	h.verifies.Add(1)
	return h.Hasher.Verify(plain, hash)
}

// fakeNotes is an in-memory NoteRepository.
type fakeNotes struct {
	mu    sync.Mutex
	notes map[uuid.UUID]model.Note
	seq   time.Time

	findErr error
}

var _ repository.NoteRepository = (*fakeNotes)(nil)

func newFakeNotes() *fakeNotes {
	return &fakeNotes{notes: map[uuid.UUID]model.Note{}, seq: time.Now()}
}

func (f *fakeNotes) FindByFilter(_ context.Context, flt model.NoteFilter) ([]model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := []model.Note{}
	for _, n := range f.notes {
		if flt.ID != nil && n.ID != *flt.ID {
			continue
		}
		if flt.OwnerID != nil && n.OwnerID != *flt.OwnerID {
			continue
		}
		if flt.Search != "" && !containsFold(n.Title, flt.Search) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotes) Insert(_ context.Context, n *model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq = f.seq.Add(time.Second)
	n.CreatedAt, n.UpdatedAt = f.seq, f.seq
	f.notes[n.ID] = *n
	return nil
}

func (f *fakeNotes) UpdateScoped(_ context.Context, id uuid.UUID, owner *uuid.UUID, title, content string) (*model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || (owner != nil && n.OwnerID != *owner) {
		return nil, errs.ErrNotFound
	}
	n.Title, n.Content = title, content
	f.notes[id] = n
	return &n, nil
}

func (f *fakeNotes) DeleteScoped(_ context.Context, id uuid.UUID, owner *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || (owner != nil && n.OwnerID != *owner) {
		return errs.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeNotes) AggregateTopAuthors(_ context.Context, limit int) ([]model.AuthorStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[uuid.UUID]*model.AuthorStat{}
	for _, n := range f.notes {
		s, ok := counts[n.OwnerID]
		if !ok {
			s = &model.AuthorStat{UserID: n.OwnerID, Username: n.OwnerName}
			counts[n.OwnerID] = s
		}
		s.NoteCount++
	}
	out := make([]model.AuthorStat, 0, len(counts))
	for _, s := range counts {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NoteCount != out[j].NoteCount {
			return out[i].NoteCount > out[j].NoteCount
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
