package core

import (
	"context"
	"net/http"
	"time"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	manifest "github.com/joeydtaylor/terakoya-core/pkg/manifest"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/auth"
)

// applyPolicy wraps h with the route's guard (outermost), deadline and body cap.
func applyPolicy(h http.HandlerFunc, a *auth.Middleware, rt manifest.Route) http.HandlerFunc {
	if n := rt.Policy.MaxBodyBytes; n > 0 {
		h = withBodyLimit(h, n)
	}
	if rt.Policy.TimeoutMS > 0 {
		h = withTimeout(h, time.Duration(rt.Policy.TimeoutMS)*time.Millisecond)
	}
	return withGuard(h, a, rt.Guard)
}

func withTimeout(next http.HandlerFunc, d time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func withBodyLimit(next http.HandlerFunc, n int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		next(w, r)
	}
}

// withGuard rejects unauthenticated requests on require_auth routes. The
// token is verified again so the 401 carries the real failure, and the
// session cookies are cleared before it is written.
func withGuard(next http.HandlerFunc, a *auth.Middleware, g manifest.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.RequireAuth {
			next(w, r)
			return
		}
		if a == nil {
			apperr.WriteHTTP(w, auth.MissingTokenError())
			return
		}
		if a.IsAuthenticated(r.Context()) {
			next(w, r)
			return
		}
		claims, err := a.Authenticate(w, r, a.Session().Token(r))
		if err != nil {
			apperr.WriteHTTP(w, err)
			return
		}
		next(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	}
}
