// Command remind mails today's pending trial-lesson reminders once and exits.
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/bundlefx"
	"github.com/joeydtaylor/terakoya-core/pkg/reminder"
)

func main() { os.Exit(run()) }

// run exits 1 when the job cannot run and 2 when any reminder failed to send.
func run() int {
	var (
		d   *reminder.Dispatcher
		log *zap.Logger
	)
	app := fx.New(
		bundlefx.Module,
		fx.Populate(&d, &log),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger { return &fxevent.ZapLogger{Logger: l} }),
	)
	if err := app.Err(); err != nil {
		zap.NewExample().Error("remind: startup failed", zap.Error(err))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		log.Error("remind: start failed", zap.Error(err))
		return 1
	}
	defer func() { _ = app.Stop(context.Background()) }()

	rep, err := d.Run(ctx)
	if err != nil {
		log.Error("remind: run failed", zap.Error(err))
		return 1
	}
	if rep.Failed > 0 {
		return 2
	}
	return 0
}
