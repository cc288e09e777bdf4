package guard

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxEmail ctxKey = iota
	ctxRole
)

// WithIdentity records the authenticated identity on the request context.
func WithIdentity(ctx context.Context, email, role string) context.Context {
	ctx = context.WithValue(ctx, ctxEmail, email)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func Email(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxEmail).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("email not in context")
}

func Role(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxRole).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}
