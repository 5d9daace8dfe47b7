package core

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/middleware/auth"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/logger"
	httpx "github.com/joeydtaylor/terakoya-core/pkg/transport/httpx"
)

type BuildDeps struct {
	Auth    *auth.Middleware
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
	Log     *zap.Logger
}
