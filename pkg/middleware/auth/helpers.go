package auth

import "context"

type contextKey struct{}

var claimsCtxKey = contextKey{}

// WithClaims attaches verified claims to ctx.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

// ClaimsFrom returns the claims attached by the middleware, if any.
func ClaimsFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(Claims)
	return c, ok
}

func (m *Middleware) GetClaims(ctx context.Context) Claims {
	c, _ := ClaimsFrom(ctx)
	return c
}

func (m *Middleware) IsAuthenticated(ctx context.Context) bool {
	c, ok := ClaimsFrom(ctx)
	return ok && c.Subject != ""
}

// Subject is the verified user's sub claim, or "".
func (m *Middleware) Subject(ctx context.Context) string {
	return m.GetClaims(ctx).Subject
}
