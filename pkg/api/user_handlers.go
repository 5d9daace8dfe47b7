package api

import (
	"net/http"
	"time"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	"github.com/joeydtaylor/terakoya-core/pkg/core"
	"github.com/joeydtaylor/terakoya-core/pkg/user"
)

func (h *Handlers) getUser(_ http.ResponseWriter, r *core.Request) (any, int, error) {
	id := r.Param("uuid")
	if err := checkVar(id, tagUserUUID); err != nil {
		return nil, 0, err
	}
	it, err := h.users.Get(r.Context(), id, user.EmptySK)
	if err != nil {
		return nil, 0, err
	}
	return it, 0, nil
}

// putUser replaces the profile row. The body's uuid, when present, must
// match the path.
func (h *Handlers) putUser(_ http.ResponseWriter, r *core.Request) (any, int, error) {
	id := r.Param("uuid")
	if err := checkVar(id, tagUserUUID); err != nil {
		return nil, 0, err
	}
	var in user.Item
	if err := r.Decode(&in); err != nil {
		return nil, 0, err
	}
	if in.UUID == "" {
		in.UUID = id
	}
	if in.UUID != id {
		return nil, 0, apperr.New(apperr.KindBadRequest, msgUUIDMismatch)
	}
	if err := checkVar(in.Email, "omitempty,email"); err != nil {
		return nil, 0, err
	}
	in.UpdatedAt = h.now().Format(time.RFC3339)
	if err := h.users.Put(r.Context(), in); err != nil {
		return nil, 0, err
	}
	return okResponse, 0, nil
}
