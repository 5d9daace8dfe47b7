package auth

import (
	"net/http"
)

// Middleware attaches verified claims to the request context. The token
// comes from the access_token cookie, then from an Authorization: Bearer
// header. A missing or unverifiable token leaves the request
// unauthenticated and the cookies untouched; route guards decide whether
// that is acceptable and clear the session when it is not.
func (m *Middleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := m.session.Token(r)
			if token == "" || m.verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := m.verifier.Verify(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
