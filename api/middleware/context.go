package middleware

import "context"

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxUsername contextKey = "username"
	ctxRole     contextKey = "actor_role"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   int64
	Username string
	Role     string
}

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// PrincipalFromContext returns the caller, or false on unauthenticated routes.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	id := UserIDFromContext(ctx)
	if id <= 0 {
		return Principal{}, false
	}
	username, _ := ctx.Value(ctxUsername).(string)
	return Principal{UserID: id, Username: username, Role: RoleFromContext(ctx)}, true
}

// WithPrincipal injects the caller into the context for downstream handlers.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, p.UserID)
	ctx = context.WithValue(ctx, ctxUsername, p.Username)
	return context.WithValue(ctx, ctxRole, p.Role)
}
