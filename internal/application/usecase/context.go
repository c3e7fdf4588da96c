package usecase

import (
	"context"
	"strings"
)

// usecase-level context keys
type ctxKey string

const (
	ctxKeyUserID ctxKey = "userId"
	ctxKeyAdmin  ctxKey = "admin"
	ctxKeyEmail  ctxKey = "email"
)

// WithUser is called by the auth middleware to inject the verified identity.
func WithUser(ctx context.Context, userID string, admin bool) context.Context {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxKeyUserID, uid)
	return context.WithValue(ctx, ctxKeyAdmin, admin)
}

// WithEmail records the verified email of the current user, when the
// identity token carries one.
func WithEmail(ctx context.Context, email string) context.Context {
	if e := strings.TrimSpace(email); e != "" {
		return context.WithValue(ctx, ctxKeyEmail, e)
	}
	return ctx
}

func EmailFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyEmail).(string)
	return s
}

func UserIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyUserID).(string)
	return strings.TrimSpace(s)
}

func IsAdminFromContext(ctx context.Context) bool {
	b, _ := ctx.Value(ctxKeyAdmin).(bool)
	return b && UserIDFromContext(ctx) != ""
}

// Identity is the "current user id, or none" capability.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, bool)
	IsAdmin(ctx context.Context) bool
}

// ContextIdentity reads the identity placed by WithUser.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUserID(ctx context.Context) (string, bool) {
	uid := UserIDFromContext(ctx)
	return uid, uid != ""
}

func (ContextIdentity) IsAdmin(ctx context.Context) bool {
	return IsAdminFromContext(ctx)
}

func requireUser(ctx context.Context, id Identity) (string, error) {
	uid, ok := id.CurrentUserID(ctx)
	if !ok {
		return "", ErrNotAuthenticated
	}
	return uid, nil
}

func requireAdmin(ctx context.Context, id Identity) (string, error) {
	uid, err := requireUser(ctx, id)
	if err != nil {
		return "", err
	}
	if !id.IsAdmin(ctx) {
		return "", ErrForbidden
	}
	return uid, nil
}
