package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// SessionStore keeps the token pair in browser cookies. Cookies are
// HttpOnly, Secure and SameSite=None with no Domain or Path, so the
// browser scopes them to the issuing host.
type SessionStore struct{}

// Read returns explicit when set, otherwise the access token cookie.
func (SessionStore) Read(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return cookieValue(r, AccessTokenCookie)
}

// Token returns the access token cookie, falling back to an
// Authorization: Bearer header.
func (s SessionStore) Token(r *http.Request) string {
	if t := s.Read(r, ""); t != "" {
		return t
	}
	return bearerToken(r)
}

// ReadRefresh returns the refresh token cookie.
func (SessionStore) ReadRefresh(r *http.Request) string {
	return cookieValue(r, RefreshTokenCookie)
}

func (SessionStore) Write(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Clear deletes both token cookies regardless of whether they were set.
func (SessionStore) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil || c == nil {
		return ""
	}
	return c.Value
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
