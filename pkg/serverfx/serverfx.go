package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/api"
	"github.com/joeydtaylor/terakoya-core/pkg/booking"
	"github.com/joeydtaylor/terakoya-core/pkg/bundlefx"
	"github.com/joeydtaylor/terakoya-core/pkg/config"
	"github.com/joeydtaylor/terakoya-core/pkg/core"
	"github.com/joeydtaylor/terakoya-core/pkg/identity"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/auth"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/logger"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/metrics"
	"github.com/joeydtaylor/terakoya-core/pkg/reminder"
	"github.com/joeydtaylor/terakoya-core/pkg/transport/httpx"
	"github.com/joeydtaylor/terakoya-core/pkg/user"
)

// Options allow per-service naming without code duplication.
type Options struct {
	Service string // for logs only
}

// ---- Handlers ----

func provideHandlers(id *identity.Service, users *user.Repository, bookings *booking.Repository, d *reminder.Dispatcher, log *zap.Logger) *api.Handlers {
	return api.New(id, users, bookings, d, log)
}

// ---- Router ----

type routerDeps struct {
	fx.In

	Cfg      *config.Config
	Handlers *api.Handlers

	AuthMW *auth.Middleware
	LogMW  *logger.Middleware

	Metrics http.Handler `name:"metrics"`

	R   httpx.Router
	Log *zap.Logger
}

func provideRouter(d routerDeps) (http.Handler, error) {
	d.Handlers.Register()

	path := d.Cfg.Server.Manifest
	cfg, err := core.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	if err := core.CheckHandlers(cfg); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	d.Log.Info("manifest loaded", zap.String("path", path), zap.Int("routes", len(cfg.Routes)))

	return core.BuildRouter(cfg, core.BuildDeps{
		Auth:    d.AuthMW,
		LogMW:   d.LogMW,
		Metrics: d.Metrics,
		Router:  d.R,
		Log:     d.Log,
	}), nil
}

// ---- Server lifecycle ----

type serverDeps struct {
	fx.In
	Opts   Options
	Cfg    *config.Config
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
}

func registerHooks(lc fx.Lifecycle, d serverDeps) {
	addr := d.Cfg.Server.ListenAddress
	cert := d.Cfg.Server.TLSCert
	key := d.Cfg.Server.TLSKey

	srv := newServer(addr, d.App)
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", d.Opts.Service),
					zap.String("stage", d.Cfg.Stage),
					zap.String("addr", addr),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", d.Opts.Service),
					zap.String("stage", d.Cfg.Stage),
					zap.String("addr", addr),
				)
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", d.Opts.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---- Public Fx module ----

func Module(opts Options) fx.Option {
	return fx.Options(
		fx.Supply(opts),

		// Config, AWS clients, domain services, logger
		bundlefx.Module,

		// Middleware
		auth.Module,

		// Metrics (named)
		fx.Provide(fx.Annotate(metrics.ProvideMetrics, fx.ResultTags(`name:"metrics"`))),

		// Router implementation
		fx.Provide(httpx.NewChi),

		fx.Provide(provideHandlers),

		// Router (named "app")
		fx.Provide(
			fx.Annotate(
				provideRouter,
				fx.ResultTags(`name:"app"`),
			),
		),

		fx.Invoke(registerHooks),
	)
}

// ---- helpers ----

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
