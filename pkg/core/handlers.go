package core

import (
	"net/http"
	"sync"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	"github.com/joeydtaylor/terakoya-core/pkg/codec"
	httpx "github.com/joeydtaylor/terakoya-core/pkg/transport/httpx"
)

// Request is what an in-process handler sees: the original request, its
// fully read body and the route's codec.
type Request struct {
	*http.Request
	Body  []byte
	Codec codec.Codec
}

// Decode unmarshals the body with the route codec. Failures are reported as
// validation errors.
func (r *Request) Decode(v any) error {
	if err := r.Codec.Unmarshal(r.Body, v); err != nil {
		return apperr.Wrap(apperr.KindValidationFailed, "invalid request body", err)
	}
	return nil
}

// Param returns a path parameter declared in the route pattern.
func (r *Request) Param(name string) string { return httpx.URLParam(r.Request, name) }

// InprocHandler is the signature for in-process handlers. out is encoded with
// the route codec; status 0 means 200. A non-nil err is written through
// apperr and out is ignored.
type InprocHandler func(w http.ResponseWriter, r *Request) (out any, status int, err error)

var (
	regMu    sync.RWMutex
	registry = map[string]InprocHandler{}
)

// Register makes a handler available under a name referenced in manifest.toml
func Register(name string, h InprocHandler) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = h
}

// Lookup retrieves a registered in-proc handler by name.
func Lookup(name string) (InprocHandler, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	h, ok := registry[name]
	return h, ok
}
