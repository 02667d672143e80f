// Package logger provides the structured, levelled logger used across
// stockmirror, built on log/slog.
//
// Request handlers get a logger pre-tagged with the request id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("sale created", "sale_id", sale.ID)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/stockmirror/config"
)

var L *slog.Logger

func init() {
	L = slog.New(newConsoleHandler(os.Stdout, config.AppEnv()))
	slog.SetDefault(L)
}

func newConsoleHandler(w io.Writer, env string) slog.Handler {
	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "test":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// Setup rebuilds L from config. When LOG_MONGO_URI is set, records are also
// shipped to MongoDB; the returned closer flushes that sink and must be called
// at shutdown. Setup falls back to console-only logging if Mongo is unreachable.
func Setup() (closer func()) {
	console := newConsoleHandler(os.Stdout, config.AppEnv())

	uri := config.LogMongoURI()
	if uri == "" {
		L = slog.New(console)
		slog.SetDefault(L)
		return func() {}
	}

	mh, err := NewMongoHandler(uri, config.LogMongoDB(), config.LogMongoCollection())
	if err != nil {
		L = slog.New(console)
		slog.SetDefault(L)
		L.Warn("logger: mongo sink disabled", "error", err)
		return func() {}
	}

	L = slog.New(NewMultiHandler(console, mh))
	slog.SetDefault(L)
	return mh.Close
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
