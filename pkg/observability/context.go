package observability

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey uint8

const (
	correlationIDCtx ctxKey = iota
	requestIDCtx
	localeCtx
)

// Attribute keys shared by logs and metrics.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	LocaleKey        = "locale"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
)

// loggedValues are copied from the context onto every log record.
var loggedValues = []struct {
	key  ctxKey
	attr string
}{
	{correlationIDCtx, CorrelationIDKey},
	{requestIDCtx, RequestIDKey},
	{localeCtx, LocaleKey},
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// WithCorrelationID tags ctx with id, generating one when id is empty.
// The correlation ID follows a change from the request into its events.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDCtx, idOrNew(id))
}

func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDCtx)
}

// WithRequestID tags ctx with id, generating one when id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtx, idOrNew(id))
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDCtx)
}

// WithLocale stores the locale negotiated for the request.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeCtx, locale)
}

// LocaleFromContext returns "" when no locale was negotiated.
func LocaleFromContext(ctx context.Context) string {
	return stringValue(ctx, localeCtx)
}

// NewRequestContext starts a request: a fresh request ID and the caller's
// correlation ID, or a new one.
func NewRequestContext(ctx context.Context, correlationID string) context.Context {
	return WithCorrelationID(WithRequestID(ctx, ""), correlationID)
}
