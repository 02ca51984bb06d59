package session

import (
	"context"

	"github.com/and161185/notekeeper/internal/model"
)

type ctxKey string

const (
	identityKey ctxKey = "nk.identity"
	tokenKey    ctxKey = "nk.token"
)

// WithIdentity stores the authenticated identity and its session token in context.
func WithIdentity(ctx context.Context, id model.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityKey, id)
	return context.WithValue(ctx, tokenKey, token)
}

// IdentityFromCtx fetches the identity stored by WithIdentity.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	return id, ok
}

// TokenFromCtx fetches the raw session token stored by WithIdentity.
func TokenFromCtx(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tokenKey).(string)
	return v, ok && v != ""
}
