package api

import (
	"net/http"

	"github.com/joeydtaylor/terakoya-core/pkg/core"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/auth"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signUpResponse struct {
	UUID string `json:"uuid"`
}

func (h *Handlers) signUp(_ http.ResponseWriter, r *core.Request) (any, int, error) {
	var in credentials
	if err := r.Decode(&in); err != nil {
		return nil, 0, err
	}
	if err := checkStruct(in); err != nil {
		return nil, 0, err
	}
	id, err := h.identity.SignUp(r.Context(), in.Email, in.Password)
	if err != nil {
		return nil, 0, err
	}
	return signUpResponse{UUID: id}, http.StatusOK, nil
}

// signIn stores both tokens as cookies; the body carries no token.
func (h *Handlers) signIn(w http.ResponseWriter, r *core.Request) (any, int, error) {
	var in credentials
	if err := r.Decode(&in); err != nil {
		return nil, 0, err
	}
	if err := checkStruct(in); err != nil {
		return nil, 0, err
	}
	pair, err := h.identity.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		return nil, 0, err
	}
	h.session.Write(w, auth.AccessTokenCookie, pair.AccessToken)
	h.session.Write(w, auth.RefreshTokenCookie, pair.RefreshToken)
	return okResponse, 0, nil
}

func (h *Handlers) refresh(w http.ResponseWriter, r *core.Request) (any, int, error) {
	if err := h.identity.Refresh(r.Context(), w, h.session.ReadRefresh(r.Request)); err != nil {
		return nil, 0, err
	}
	return okResponse, 0, nil
}

func (h *Handlers) signOut(w http.ResponseWriter, _ *core.Request) (any, int, error) {
	h.session.Clear(w)
	return okResponse, 0, nil
}

func (h *Handlers) deleteUser(w http.ResponseWriter, r *core.Request) (any, int, error) {
	token := h.session.Token(r.Request)
	if token == "" {
		h.session.Clear(w)
		return nil, 0, auth.MissingTokenError()
	}
	if err := h.identity.DeleteUser(r.Context(), w, token); err != nil {
		return nil, 0, err
	}
	return okResponse, 0, nil
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handlers) forgotPassword(_ http.ResponseWriter, r *core.Request) (any, int, error) {
	var in forgotPasswordRequest
	if err := r.Decode(&in); err != nil {
		return nil, 0, err
	}
	if err := checkStruct(in); err != nil {
		return nil, 0, err
	}
	if err := h.identity.ForgotPassword(r.Context(), in.Email); err != nil {
		return nil, 0, err
	}
	return okResponse, 0, nil
}

type resetPasswordRequest struct {
	Email            string `json:"email" validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
	NewPassword      string `json:"new_password" validate:"required"`
}

func (h *Handlers) resetPassword(_ http.ResponseWriter, r *core.Request) (any, int, error) {
	var in resetPasswordRequest
	if err := r.Decode(&in); err != nil {
		return nil, 0, err
	}
	if err := checkStruct(in); err != nil {
		return nil, 0, err
	}
	if err := h.identity.ResetPassword(r.Context(), in.Email, in.ConfirmationCode, in.NewPassword); err != nil {
		return nil, 0, err
	}
	return okResponse, 0, nil
}
