package manifest

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/joeydtaylor/terakoya-core/pkg/codec"
)

// Route describes a single HTTP route.
type Route struct {
	Path    string   `toml:"path"`
	Method  string   `toml:"method"`
	Guard   Guard    `toml:"guard"`
	Policy  Policy   `toml:"policy"`
	Handler HSpec    `toml:"handler"`
	Codec   string   `toml:"codec"`
	Tags    []string `toml:"tags"`
}

type Guard struct {
	RequireAuth bool `toml:"require_auth"`
}

type Policy struct {
	TimeoutMS    int   `toml:"timeout_ms"`
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

type HSpec struct {
	Type HandlerType `toml:"type"`
	Name string      `toml:"name"`
}

// TagLogBody marks a route whose JSON request bodies go into the access log.
const TagLogBody = "log_body"

// HasTag reports whether the route carries tag.
func (r Route) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

var allowedMethods = map[string]struct{}{
	http.MethodGet: {}, http.MethodPost: {}, http.MethodPut: {},
	http.MethodPatch: {}, http.MethodDelete: {},
}

// normalize path/method/codec
func (r *Route) normalize() error {
	if r.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(r.Path, "/") {
		r.Path = "/" + r.Path
	}
	if r.Path != "/" {
		r.Path = path.Clean(r.Path)
	}
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	r.Codec = strings.ToLower(strings.TrimSpace(r.Codec))
	if r.Codec == "" {
		r.Codec = codec.DefaultName
	}
	return nil
}

// validate fields that are independent of global state.
func (r *Route) validate() error {
	if _, ok := allowedMethods[r.Method]; !ok {
		return fmt.Errorf("method %q not supported", r.Method)
	}
	switch r.Handler.Type {
	case HandlerInproc:
		if strings.TrimSpace(r.Handler.Name) == "" {
			return errors.New("handler.name required for inproc")
		}
	default:
		return fmt.Errorf("unknown handler type %q", r.Handler.Type)
	}
	if _, ok := codec.Lookup(r.Codec); !ok {
		return fmt.Errorf("codec %q not registered", r.Codec)
	}
	if r.Policy.TimeoutMS < 0 {
		return errors.New("policy.timeout_ms must be >= 0")
	}
	if r.Policy.MaxBodyBytes < 0 {
		return errors.New("policy.max_body_bytes must be >= 0")
	}
	return nil
}
