package registry

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

// Invoker runs a provider on behalf of the resolver.
type Invoker interface {
	Invoke(ctx context.Context, key sdk.Key, provider sdk.Provider, params sdk.Parameters, ec *sdk.ExecutionContext) (any, error)
}

// DirectInvoker calls the provider without any guarding.
type DirectInvoker struct{}

func (DirectInvoker) Invoke(ctx context.Context, _ sdk.Key, provider sdk.Provider, params sdk.Parameters, ec *sdk.ExecutionContext) (any, error) {
	return provider.Execute(ctx, params, ec)
}

// Resolver is the consumer-facing way to fetch capability data.
type Resolver struct {
	catalog        *Catalog
	invoker        Invoker
	logger         *slog.Logger
	metrics        observability.Metrics
	fallbackLocale string
}

// NewResolver creates a resolver. A nil invoker calls providers directly.
func NewResolver(catalog *Catalog, invoker Invoker, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if invoker == nil {
		invoker = DirectInvoker{}
	}
	return &Resolver{
		catalog:        catalog,
		invoker:        invoker,
		logger:         logger,
		metrics:        observability.NoopMetrics{},
		fallbackLocale: sdk.DefaultLocale,
	}
}

// WithMetrics records lookups of unregistered keys.
func (r *Resolver) WithMetrics(metrics observability.Metrics) *Resolver {
	if metrics != nil {
		r.metrics = metrics
	}
	return r
}

// WithFallbackLocale sets the fallback locale handed to providers.
func (r *Resolver) WithFallbackLocale(locale string) *Resolver {
	if locale != "" {
		r.fallbackLocale = locale
	}
	return r
}

// Resolve runs the provider registered under key and returns its result verbatim.
// An unregistered key yields (nil, nil): capabilities are optional and their
// absence is a normal outcome. Provider errors are returned to the caller.
func (r *Resolver) Resolve(ctx context.Context, key sdk.Key, params sdk.Parameters) (any, error) {
	provider, ok := r.catalog.Provider(key)
	if !ok {
		r.logger.DebugContext(ctx, "capability not registered", "capability", string(key))
		r.metrics.Counter(observability.MetricCapabilityMisses, 1, observability.T("capability", string(key)))
		return nil, nil
	}

	ec := sdk.NewExecutionContext(ctx, key).
		WithLogger(r.logger).
		WithFallbackLocale(r.fallbackLocale)

	if params == nil {
		params = sdk.Parameters{}
	} else {
		params = params.Clone()
	}

	return r.invoker.Invoke(ctx, key, provider, params, ec)
}
