// Package logging configures the CLI's structured logger and lets callers
// attach request-scoped attributes to a context that get folded into
// every log record emitted while that context is in scope.
package logging

import (
	"context"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger builds a slog.Logger writing to w, either as JSON or as the
// standard slog text handler, at the given level. A ctxHandler wraps
// whichever handler is chosen so AppendCtx attributes get attached.
func Logger(w io.Writer, json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{Handler: h})
}

// RotatingWriter returns an io.Writer that rotates path once it exceeds
// maxSizeMB, keeping at most maxBackups old copies. Used by the CLI's
// --log-file flag so a long-running index/inspect job doesn't grow an
// unbounded log on disk.
func RotatingWriter(path string, maxSizeMB, maxBackups int) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}

type ctxAttrsKey struct{}

// AppendCtx returns a context carrying attrs in addition to any already
// attached to ctx. Every record logged through that context (via
// slog.InfoContext and friends) picks them up automatically.
func AppendCtx(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing, _ := ctx.Value(ctxAttrsKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, ctxAttrsKey{}, merged)
}

// ctxHandler is a slog.Handler decorator that injects the attributes
// AppendCtx attached to the record's context, if any.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxAttrsKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithGroup(name)}
}
