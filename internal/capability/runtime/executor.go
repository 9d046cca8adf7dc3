// Package runtime runs capability providers behind per-capability circuit
// breakers, timeouts and metrics.
package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// Executor invokes providers with circuit breaker protection.
// It satisfies registry.Invoker.
type Executor struct {
	mu       sync.Mutex
	breakers map[sdk.Key]*gobreaker.CircuitBreaker[any]
	metrics  observability.Metrics
	logger   *slog.Logger
	config   ExecutorConfig
}

// ExecutorConfig configures the executor behavior.
type ExecutorConfig struct {
	// CircuitBreakerEnabled enables circuit breakers.
	CircuitBreakerEnabled bool

	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is the period of the open state.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips a breaker.
	// Zero selects the default.
	FailureThreshold uint32

	// CallTimeout bounds a single provider call. Zero means no bound.
	CallTimeout time.Duration
}

// DefaultExecutorConfig returns a sensible default configuration.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		CircuitBreakerEnabled: true,
		MaxRequests:           3,
		Interval:              10 * time.Second,
		Timeout:               30 * time.Second,
		FailureThreshold:      5,
		CallTimeout:           5 * time.Second,
	}
}

// NewExecutor creates a new capability executor.
func NewExecutor(metrics observability.Metrics, logger *slog.Logger, config ExecutorConfig) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = DefaultExecutorConfig().FailureThreshold
	}
	return &Executor{
		breakers: make(map[sdk.Key]*gobreaker.CircuitBreaker[any]),
		metrics:  metrics,
		logger:   logger,
		config:   config,
	}
}

// breaker returns the circuit breaker for a capability, creating it if needed.
func (e *Executor) breaker(key sdk.Key) *gobreaker.CircuitBreaker[any] {
	if !e.config.CircuitBreakerEnabled {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if b, exists := e.breakers[key]; exists {
		return b
	}

	settings := gobreaker.Settings{
		Name:        string(key),
		MaxRequests: e.config.MaxRequests,
		Interval:    e.config.Interval,
		Timeout:     e.config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= e.config.FailureThreshold
		},
		IsExcluded: func(err error) bool {
			// The caller going away says nothing about the provider.
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("circuit breaker state changed",
				"capability", name,
				"from", from.String(),
				"to", to.String(),
			)
			e.metrics.Gauge(observability.MetricCapabilityCircuitOpen, stateGauge(to), observability.T("capability", name))
		},
	}

	b := gobreaker.NewCircuitBreaker[any](settings)
	e.breakers[key] = b
	return b
}

// Invoke runs provider under the breaker registered for key.
func (e *Executor) Invoke(ctx context.Context, key sdk.Key, provider sdk.Provider, params sdk.Parameters, ec *sdk.ExecutionContext) (any, error) {
	if e.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.CallTimeout)
		defer cancel()
	}

	tag := observability.T("capability", string(key))
	start := time.Now()

	call := func() (any, error) {
		return provider.Execute(ctx, params, ec)
	}

	var (
		result any
		err    error
	)
	if b := e.breaker(key); b != nil {
		result, err = b.Execute(call)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			e.metrics.Counter(observability.MetricCapabilityCalls, 1, tag, observability.T("outcome", "rejected"))
			return nil, sdk.NewCapabilityError(key, "execute", sdk.ErrCircuitOpen)
		}
	} else {
		result, err = call()
	}

	e.metrics.Timing(observability.MetricCapabilityDuration, time.Since(start), tag)
	if err != nil {
		e.metrics.Counter(observability.MetricCapabilityCalls, 1, tag, observability.T("outcome", "error"))
		e.metrics.Counter(observability.MetricCapabilityErrors, 1, tag)
		e.logger.WarnContext(ctx, "capability execution failed",
			"capability", string(key),
			observability.ErrorKey, err,
		)
		return nil, sdk.NewCapabilityError(key, "execute", err)
	}
	e.metrics.Counter(observability.MetricCapabilityCalls, 1, tag, observability.T("outcome", "ok"))
	return result, nil
}

// BreakerState returns the breaker state for a capability, or "none" if it has not run.
func (e *Executor) BreakerState(key sdk.Key) string {
	e.mu.Lock()
	b := e.breakers[key]
	e.mu.Unlock()
	if b == nil {
		return "none"
	}
	return b.State().String()
}

// ResetBreaker discards the breaker for a capability.
func (e *Executor) ResetBreaker(key sdk.Key) {
	e.mu.Lock()
	delete(e.breakers, key)
	e.mu.Unlock()
	e.logger.Info("circuit breaker reset", "capability", string(key))
}

func stateGauge(s gobreaker.State) float64 {
	if s == gobreaker.StateOpen {
		return 1
	}
	return 0
}
