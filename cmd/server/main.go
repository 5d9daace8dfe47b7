package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/serverfx"
)

func main() {
	fx.New(
		serverfx.Module(serverfx.Options{Service: "terakoya"}),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger { return &fxevent.ZapLogger{Logger: l} }),
	).Run()
}
