package auth

import (
	"context"
	"net/http"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
)

// TokenVerifier is satisfied by *Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (Claims, error)
}

type Middleware struct {
	verifier TokenVerifier
	session  SessionStore
}

func NewMiddleware(v TokenVerifier) *Middleware {
	return &Middleware{verifier: v}
}

// Session exposes the cookie store so handlers write and clear tokens
// with the same attributes the middleware reads.
func (m *Middleware) Session() SessionStore { return m.session }

// Authenticate resolves the token (explicit, then cookie) and verifies it.
// Every authentication failure clears the session cookies on w before the
// error is returned.
func (m *Middleware) Authenticate(w http.ResponseWriter, r *http.Request, explicit string) (Claims, error) {
	token := m.session.Read(r, explicit)
	if token == "" {
		m.session.Clear(w)
		return Claims{}, MissingTokenError()
	}
	claims, err := m.verifier.Verify(r.Context(), token)
	if err != nil {
		if k, ok := apperr.KindOf(err); !ok || apperr.IsAuthFailure(k) {
			m.session.Clear(w)
		}
		return Claims{}, err
	}
	return claims, nil
}
