package logger

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// maxLoggedBody caps request bodies copied into access logs.
const maxLoggedBody = 1 << 16

var (
	bodyLogMu       sync.RWMutex
	bodyLogPatterns = map[string]struct{}{}
)

// AddBodyLogPaths allow-lists route patterns (e.g. "/booking/place") whose
// small JSON request bodies are copied into the access log. Authentication
// routes are never logged, even when listed.
func AddBodyLogPaths(patterns ...string) {
	bodyLogMu.Lock()
	defer bodyLogMu.Unlock()
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			bodyLogPatterns[p] = struct{}{}
		}
	}
}

// routeKey is the matched chi pattern, or the raw path outside a chi router.
func routeKey(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func shouldLogBody(r *http.Request, body []byte) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	if len(body) == 0 || len(body) > maxLoggedBody {
		return false
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return false
	}
	if strings.HasPrefix(r.URL.Path, "/authentication/") {
		return false
	}
	bodyLogMu.RLock()
	_, ok := bodyLogPatterns[routeKey(r)]
	bodyLogMu.RUnlock()
	return ok
}
