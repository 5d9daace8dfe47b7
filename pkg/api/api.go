// Package api binds the named in-process handlers referenced by manifest.toml
// to the identity, user, booking and reminder services.
package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/booking"
	"github.com/joeydtaylor/terakoya-core/pkg/core"
	"github.com/joeydtaylor/terakoya-core/pkg/identity"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/auth"
	"github.com/joeydtaylor/terakoya-core/pkg/reminder"
	"github.com/joeydtaylor/terakoya-core/pkg/user"
)

type Identity interface {
	SignUp(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (identity.TokenPair, error)
	Refresh(ctx context.Context, w http.ResponseWriter, refreshToken string) error
	DeleteUser(ctx context.Context, w http.ResponseWriter, accessToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type Users interface {
	Get(ctx context.Context, uuid, sk string) (user.Item, error)
	Put(ctx context.Context, it user.Item) error
}

type Bookings interface {
	Insert(ctx context.Context, item booking.Item) error
	ListByDate(ctx context.Context, date string) ([]booking.Item, error)
	UpdatePlace(ctx context.Context, date, sk string, place booking.Place) error
	Now() time.Time
}

type Reminders interface {
	Run(ctx context.Context) (reminder.Report, error)
}

type Handlers struct {
	identity  Identity
	users     Users
	bookings  Bookings
	reminders Reminders
	session   auth.SessionStore
	now       func() time.Time
	log       *zap.Logger
}

func New(id Identity, users Users, bookings Bookings, reminders Reminders, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{identity: id, users: users, bookings: bookings, reminders: reminders, now: time.Now, log: log}
}

// Register publishes every handler under its manifest name.
func (h *Handlers) Register() {
	for name, fn := range h.routes() {
		core.Register(name, fn)
	}
}

func (h *Handlers) routes() map[string]core.InprocHandler {
	return map[string]core.InprocHandler{
		"auth.signup":          h.signUp,
		"auth.signin":          h.signIn,
		"auth.refresh":         h.refresh,
		"auth.signout":         h.signOut,
		"auth.delete_user":     h.deleteUser,
		"auth.forgot_password": h.forgotPassword,
		"auth.reset_password":  h.resetPassword,
		"user.get":             h.getUser,
		"user.put":             h.putUser,
		"booking.insert":       h.insertBooking,
		"booking.list":         h.listBookings,
		"booking.update_place": h.updatePlace,
		"booking.remind":       h.remind,
	}
}

type statusResponse struct {
	Status string `json:"status"`
}

var okResponse = statusResponse{Status: "ok"}
