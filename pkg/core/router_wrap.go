package core

import (
	"errors"
	"io"
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	"github.com/joeydtaylor/terakoya-core/pkg/codec"
	manifest "github.com/joeydtaylor/terakoya-core/pkg/manifest"
)

func wrapRoute(rt manifest.Route, d BuildDeps) http.HandlerFunc {
	if rt.Handler.Type != manifest.HandlerInproc {
		return func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unknown handler type", http.StatusInternalServerError)
		}
	}
	h, ok := Lookup(rt.Handler.Name)
	if !ok {
		return func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "handler not found", http.StatusInternalServerError)
		}
	}
	c, ok := codec.Lookup(rt.Codec)
	if !ok {
		c = codec.JSONStrict
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				apperr.WriteHTTP(w, apperr.Wrap(apperr.KindBadRequest, "request body too large", err))
				return
			}
			apperr.WriteHTTP(w, apperr.Wrap(apperr.KindBadRequest, "unreadable request body", err))
			return
		}

		out, status, err := h(w, &Request{Request: r, Body: body, Codec: c})
		if err != nil {
			if k, _ := apperr.KindOf(err); apperr.Status(k) >= http.StatusInternalServerError {
				log.Error("handler failed",
					zap.String("handler", rt.Handler.Name),
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.Error(err),
				)
			}
			apperr.WriteHTTP(w, err)
			return
		}

		status = statusIf(status, http.StatusOK)
		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		var payload []byte
		if out != nil {
			if payload, err = c.Marshal(out); err != nil {
				log.Error("response encode failed", zap.String("handler", rt.Handler.Name), zap.Error(err))
				apperr.WriteHTTP(w, err)
				return
			}
		}
		writeBody(w, c.ContentType(), payload, status)
	}
}
