package auth

import (
	"context"
	"errors"
)

type ctxKey int

const ctxIdentity ctxKey = iota

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

// IdentityFrom returns the authenticated identity attached by the
// access-token guard, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	v := ctx.Value(ctxIdentity)
	if id, ok := v.(Identity); ok && id.UserID > 0 {
		return id, true
	}
	return Identity{}, false
}

func UserID(ctx context.Context) (int64, error) {
	if id, ok := IdentityFrom(ctx); ok {
		return id.UserID, nil
	}
	return 0, errors.New("identity not in context")
}
