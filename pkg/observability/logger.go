// Package observability provides structured logging, metrics collection
// and health reporting for folio.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName is attached to every log record.
const ServiceName = "folio"

// LogOptions configures NewLogger.
type LogOptions struct {
	Level  slog.Leveler
	JSON   bool
	Source bool
	// Output defaults to os.Stderr.
	Output  io.Writer
	Service string
	Version string
}

// NewLogger builds a slog logger that also records the correlation ID,
// request ID and locale carried by the context passed to *Context calls.
func NewLogger(opts LogOptions) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.Source}

	var h slog.Handler = slog.NewTextHandler(out, handlerOpts)
	if opts.JSON {
		h = slog.NewJSONHandler(out, handlerOpts)
	}

	var attrs []slog.Attr
	if opts.Service != "" {
		attrs = append(attrs, slog.String("service", opts.Service))
	}
	if opts.Version != "" {
		attrs = append(attrs, slog.String("version", opts.Version))
	}
	if len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}
	return slog.New(contextHandler{h})
}

// LoggerFor builds the process logger from LOG_LEVEL and LOG_FORMAT.
// Production always logs JSON with source locations to stdout.
func LoggerFor(env, level, format string) *slog.Logger {
	production := env == "production"
	opts := LogOptions{
		Level:   ParseLevel(level),
		JSON:    production || strings.EqualFold(format, "json"),
		Source:  production,
		Service: ServiceName,
		Version: os.Getenv("FOLIO_VERSION"),
	}
	if production {
		opts.Output = os.Stdout
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return NewLogger(opts)
}

// ParseLevel accepts slog level names in any case, with optional offsets
// such as "warn+2". Anything else is info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, v := range loggedValues {
		if s := stringValue(ctx, v.key); s != "" {
			r.AddAttrs(slog.String(v.attr, s))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}
