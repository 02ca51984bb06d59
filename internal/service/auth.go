// Package service contains application services for accounts, sessions and notes.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/notekeeper/internal/crypto"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/lockout"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/repository"
)

// MinPasswordLen is the shortest accepted password, in characters.
const MinPasswordLen = 6

// Landing paths after a successful login.
const (
	AdminLanding = "/admin/notes"
	UserLanding  = "/dashboard"
)

// LoginResult is the fresh identity plus the page the caller should be sent to.
type LoginResult struct {
	Identity model.Identity
	Landing  string
}

// AuthService defines account registration, login and profile operations.
type AuthService interface {
	// Register validates the form, resolves the effective role and stores the account.
	Register(ctx context.Context, reg model.Registration) (*model.User, error)
	// Login checks credentials under the lockout policy.
	Login(ctx context.Context, email, password string) (LoginResult, error)
	// Profile loads the current account of an identity.
	Profile(ctx context.Context, who model.Identity) (*model.User, error)
	// UpdateProfile applies profile edits and returns the refreshed identity.
	UpdateProfile(ctx context.Context, who model.Identity, upd model.ProfileUpdate) (model.Identity, *model.User, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	hasher pkgcrypto.Hasher
	lock   lockout.Policy
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, hasher pkgcrypto.Hasher, lock lockout.Policy) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, hasher: hasher, lock: lock}
}

// NormalizeEmail trims and lower-cases an address so lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account.
// Validation order: all fields present, passwords equal, minimum length.
// Only an explicit admin request can produce an admin, and only while no admin
// exists; otherwise the request is silently downgraded to user.
func (s *AuthServiceImpl) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	username := strings.TrimSpace(reg.Username)
	email := NormalizeEmail(reg.Email)
	if username == "" || email == "" || reg.Password == "" || reg.ConfirmPassword == "" {
		return nil, errs.Validation("Please fill in all fields.")
	}
	if reg.Password != reg.ConfirmPassword {
		return nil, errs.Validation("Passwords do not match.")
	}
	if utf8.RuneCountInString(reg.Password) < MinPasswordLen {
		return nil, errs.Validation("Password must be at least 6 characters.")
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:           uid,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		ProfilePic:   reg.ProfilePic,
		Role:         model.RoleUser,
	}
	if model.Role(reg.Role) == model.RoleAdmin {
		u.Role = model.RoleAdmin
	}

	err = s.users.Insert(ctx, u)
	if errors.Is(err, errs.ErrAdminExists) {
		// the single-admin index rejected us; fall back to a regular account
		u.Role = model.RoleUser
		err = s.users.Insert(ctx, u)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates by email and password.
// Unknown email and wrong password are indistinguishable. A locked account is
// rejected before the password is looked at.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, errs.ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return LoginResult{}, errs.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if u.IsLocked {
		return LoginResult{}, errs.ErrAccountLocked
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		if _, ferr := s.lock.Failure(ctx, u.ID); ferr != nil {
			return LoginResult{}, ferr
		}
		return LoginResult{}, errs.ErrInvalidCredentials
	}

	if err := s.lock.Success(ctx, u.ID); err != nil {
		return LoginResult{}, err
	}

	res := LoginResult{Identity: model.IdentityOf(u), Landing: UserLanding}
	if res.Identity.IsAdmin() {
		res.Landing = AdminLanding
	}
	return res, nil
}

// Profile returns the stored account for who.
func (s *AuthServiceImpl) Profile(ctx context.Context, who model.Identity) (*model.User, error) {
	return s.users.FindByID(ctx, who.UserID)
}

// UpdateProfile edits username, email, picture and optionally the password.
// A password change is requested when either new-password field is non-empty and
// requires the current password.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, who model.Identity, upd model.ProfileUpdate) (model.Identity, *model.User, error) {
	username := strings.TrimSpace(upd.Username)
	email := NormalizeEmail(upd.Email)
	if username == "" || email == "" {
		return model.Identity{}, nil, errs.Validation("Username and email are required.")
	}

	u, err := s.users.FindByID(ctx, who.UserID)
	if err != nil {
		return model.Identity{}, nil, fmt.Errorf("load profile: %w", err)
	}
	u.Username = username
	u.Email = email
	if upd.ProfilePic != nil {
		u.ProfilePic = *upd.ProfilePic
	}

	if upd.NewPassword != "" || upd.ConfirmNewPassword != "" {
		if upd.CurrentPassword == "" {
			return model.Identity{}, nil, errs.Validation("Current password is required to change your password.")
		}
		ok, err := s.hasher.Verify(upd.CurrentPassword, u.PasswordHash)
		if err != nil {
			return model.Identity{}, nil, err
		}
		if !ok {
			return model.Identity{}, nil, errs.Validation("Incorrect current password.")
		}
		if upd.NewPassword != upd.ConfirmNewPassword {
			return model.Identity{}, nil, errs.Validation("New passwords do not match.")
		}
		if utf8.RuneCountInString(upd.NewPassword) < MinPasswordLen {
			return model.Identity{}, nil, errs.Validation("Password must be at least 6 characters.")
		}
		hash, err := s.hasher.Hash(upd.NewPassword)
		if err != nil {
			return model.Identity{}, nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		return model.Identity{}, nil, err
	}
	return model.IdentityOf(u), u, nil
}
