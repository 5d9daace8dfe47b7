package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for every file written by NewLog.
const (
	maxSizeMB  = 50
	maxBackups = 3
	maxAgeDays = 7
)

// logDir is LOG_DIR, or ./log when unset.
func logDir() string {
	if v := strings.TrimSpace(os.Getenv("LOG_DIR")); v != "" {
		return v
	}
	return "log"
}

// logLevel is LOG_LEVEL (debug, info, warn, error), defaulting to info.
func logLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func encoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// NewLog returns a JSON logger writing to stdout and to a rotated file named
// n under the log directory. When the directory cannot be created the file
// sink is dropped and only stdout is used.
func NewLog(n string) *zap.Logger {
	lvl := logLevel()
	cores := []zapcore.Core{
		zapcore.NewCore(encoder(), zapcore.Lock(os.Stdout), lvl),
	}

	dir := logDir()
	if err := os.MkdirAll(dir, 0o755); err == nil {
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(dir, n),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		})
		cores = append(cores, zapcore.NewCore(encoder(), file, lvl))
	}
	return zap.New(zapcore.NewTee(cores...))
}

var httpAccessLogger = NewLog("http-access.log")

// SetAccessLogger replaces the access logger; nil is ignored.
func SetAccessLogger(l *zap.Logger) {
	if l != nil {
		httpAccessLogger = l
	}
}
