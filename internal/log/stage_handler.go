package log

import (
	"context"
	"io"
	"log/slog"
)

// stageKey is the context key holding the current pipeline stage name.
// An unexported struct type prevents collisions with other packages' keys.
type stageKey struct{}

// StageAttrKey is the attribute key StageHandler adds to log records.
const StageAttrKey = "stage"

// WithStage returns a context carrying the given pipeline stage name.
// Log records emitted under this context include a "stage" attribute.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey{}, stage)
}

// StageFromContext returns the stage name stored in the context, if any.
func StageFromContext(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(stageKey{}).(string)
	return stage, ok
}

// StageHandler wraps an slog.Handler and stamps the current pipeline stage
// from the context onto every record.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay free of stage bookkeeping; only the pipeline sets it
type StageHandler struct {
	// handler is the underlying slog handler that receives annotated records.
	handler slog.Handler
}

// NewStageHandler creates a StageHandler wrapping the given handler.
// If handler is nil, the returned StageHandler uses slog.Default().Handler().
func NewStageHandler(handler slog.Handler) *StageHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &StageHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *StageHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle annotates the record with the context's stage and delegates.
func (h *StageHandler) Handle(ctx context.Context, r slog.Record) error {
	if stage, ok := StageFromContext(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.String(StageAttrKey, stage))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *StageHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StageHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *StageHandler) WithGroup(name string) slog.Handler {
	return &StageHandler{handler: h.handler.WithGroup(name)}
}

// NewLogger creates a text-format slog.Logger with stage annotation.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewStageHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a JSON-format slog.Logger with stage annotation.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewStageHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

// handlerOptions maps the verbose flag to slog handler options.
func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
