package sdk

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/folio/pkg/observability"
)

// DefaultLocale is used when neither the parameters nor the request carry a locale.
const DefaultLocale = "en"

// ExecutionContext carries ambient request data into a provider.
type ExecutionContext struct {
	// Key is the capability being executed.
	Key Key

	// Locale is the current request locale.
	Locale string

	// FallbackLocale is used when a record has no translation for Locale.
	FallbackLocale string

	// RequestID correlates provider logs with the request that triggered them.
	RequestID string

	// Logger is scoped to the capability and request.
	Logger *slog.Logger

	// StartTime is when this execution started.
	StartTime time.Time
}

// NewExecutionContext builds an execution context from the request context.
// The locale and request ID stored by the transport layer are picked up when present.
func NewExecutionContext(ctx context.Context, key Key) *ExecutionContext {
	locale := observability.LocaleFromContext(ctx)
	if locale == "" {
		locale = DefaultLocale
	}
	return &ExecutionContext{
		Key:            key,
		Locale:         locale,
		FallbackLocale: DefaultLocale,
		RequestID:      observability.RequestIDFromContext(ctx),
		Logger:         slog.Default(),
		StartTime:      time.Now(),
	}
}

// WithLogger sets a logger scoped to this execution.
func (ec *ExecutionContext) WithLogger(logger *slog.Logger) *ExecutionContext {
	if logger == nil {
		return ec
	}
	ec.Logger = logger.With("capability", string(ec.Key))
	if ec.RequestID != "" {
		ec.Logger = ec.Logger.With(observability.RequestIDKey, ec.RequestID)
	}
	return ec
}

// WithFallbackLocale overrides the fallback locale.
func (ec *ExecutionContext) WithFallbackLocale(locale string) *ExecutionContext {
	if locale != "" {
		ec.FallbackLocale = locale
	}
	return ec
}

// Elapsed returns time since the execution started.
func (ec *ExecutionContext) Elapsed() time.Duration {
	return time.Since(ec.StartTime)
}
