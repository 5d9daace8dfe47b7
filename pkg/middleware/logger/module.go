package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// systemLogFile receives application (non-access) logs.
const systemLogFile = "terakoya.log"

func ProvideLoggerMiddleware() *Middleware { return &Middleware{} }
func ProvideLogger() *zap.Logger           { return NewLog(systemLogFile) }

var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware),
	fx.Provide(ProvideLogger),
)
