// Package session issues and resolves server-side login sessions.
//
// The cookie carries an HS256 JWT whose jti is an opaque random token. Only the
// SHA-256 of that token is stored, together with the identity snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/notekeeper/internal/crypto"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/repository"
)

// Manager ties signed cookies to stored sessions.
type Manager struct {
	store   repository.SessionRepository
	signKey []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewManager constructs a Manager. signKey must not be empty.
func NewManager(store repository.SessionRepository, signKey []byte, ttl time.Duration) *Manager {
	return &Manager{store: store, signKey: signKey, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of new sessions.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Start persists a new session for id and returns the signed cookie value.
func (m *Manager) Start(ctx context.Context, id model.Identity) (string, time.Time, error) {
	token, err := pkgcrypto.NewToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session token: %w", err)
	}
	now := m.now()
	exp := now.Add(m.ttl)
	s := &model.Session{
		TokenHash: pkgcrypto.HashToken(token),
		Identity:  id,
		CreatedAt: now,
		ExpiresAt: exp,
	}
	if err := m.store.Create(ctx, s); err != nil {
		return "", time.Time{}, err
	}

	claims := jwt.RegisteredClaims{
		ID:        token,
		Subject:   id.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Resolve maps a cookie value to the stored identity and its raw token.
// Every failure, including store errors, yields errs.ErrUnauthenticated.
func (m *Manager) Resolve(ctx context.Context, cookie string) (model.Identity, string, error) {
	token, err := m.parse(cookie, true)
	if err != nil {
		return model.Identity{}, "", errs.ErrUnauthenticated
	}
	s, err := m.store.Get(ctx, pkgcrypto.HashToken(token.ID), m.now())
	if err != nil {
		return model.Identity{}, "", errs.ErrUnauthenticated
	}
	if s.Identity.UserID.String() != token.Subject {
		return model.Identity{}, "", errs.ErrUnauthenticated
	}
	return s.Identity, token.ID, nil
}

// Refresh replaces the identity snapshot of an existing session.
func (m *Manager) Refresh(ctx context.Context, token string, id model.Identity) error {
	return m.store.UpdateIdentity(ctx, pkgcrypto.HashToken(token), id)
}

// Destroy removes the session behind cookie. Unknown or malformed cookies are ignored.
func (m *Manager) Destroy(ctx context.Context, cookie string) error {
	token, err := m.parse(cookie, false)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, pkgcrypto.HashToken(token.ID))
}

// Sweep deletes expired sessions.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

// RunJanitor sweeps every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration, log *zap.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := m.Sweep(ctx)
			if err != nil {
				log.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}

func (m *Manager) parse(cookie string, validate bool) (*jwt.RegisteredClaims, error) {
	if cookie == "" {
		return nil, errors.New("empty cookie")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if validate {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(cookie, claims, func(*jwt.Token) (any, error) {
		return m.signKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("missing jti")
	}
	return claims, nil
}
