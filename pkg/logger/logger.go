// Package logger wraps log/slog with request-scoped loggers. The request
// middleware injects a logger carrying the request id; WithCtx retrieves it
// anywhere below.
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/vyapar/config"
)

// L is the process-wide root logger.
var L *slog.Logger

type ctxKey struct{}

func init() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if config.AppEnv() == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	L = slog.New(handler).With("app", "vyapar")
}

// Inject stores log as the request-scoped logger in ctx.
func Inject(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// WithCtx returns the request-scoped logger, or the root logger when the
// context carries none.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return log
	}
	return L
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
