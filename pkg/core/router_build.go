package core

import (
	"net/http"
	"strings"

	chimd "github.com/go-chi/chi/v5/middleware"

	manifest "github.com/joeydtaylor/terakoya-core/pkg/manifest"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/terakoya-core/pkg/middleware/metrics"
)

func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))

	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(d.Auth))
		}
		// metrics collector that references auth state without copying it
		r.Use(hmetrics.Collect(d.Auth))
	} else if d.LogMW != nil {
		r.Use(d.LogMW.Middleware(nil))
	}

	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", d.Metrics)
	}

	for _, rt := range cfg.Routes {
		if rt.HasTag(manifest.TagLogBody) {
			logger.AddBodyLogPaths(rt.Path)
		}
		h := applyPolicy(wrapRoute(rt, d), d.Auth, rt)

		switch strings.ToUpper(rt.Method) {
		case http.MethodGet:
			r.Get(rt.Path, h)
		case http.MethodPost:
			r.Post(rt.Path, h)
		case http.MethodPut:
			r.Put(rt.Path, h)
		case http.MethodDelete:
			r.Delete(rt.Path, h)
		default:
			r.Handle(rt.Method, rt.Path, h)
		}
	}
	return r.Mux()
}
