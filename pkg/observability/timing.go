package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and reports it through the operation metrics
// and, when a logger is set, a log line.
type Timer struct {
	operation string
	tags      []Tag
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
}

// StartTimer starts timing operation. tags label every metric it records.
func StartTimer(operation string, tags ...Tag) *Timer {
	return &Timer{
		operation: operation,
		tags:      append([]Tag{T("operation", operation)}, tags...),
		start:     time.Now(),
	}
}

func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// Stop records the elapsed time. A non-nil err also counts an error and is
// logged at warn; success is logged at debug.
func (t *Timer) Stop(err error) time.Duration {
	elapsed := time.Since(t.start)

	if t.metrics != nil {
		t.metrics.Timing(MetricOperationDuration, elapsed, t.tags...)
		t.metrics.Counter(MetricOperationTotal, 1, t.tags...)
		if err != nil {
			t.metrics.Counter(MetricOperationErrors, 1, t.tags...)
		}
	}

	if t.logger != nil {
		if err != nil {
			t.logger.Warn("operation failed", "operation", t.operation, DurationKey, elapsed.Milliseconds(), ErrorKey, err)
		} else {
			t.logger.Debug("operation completed", "operation", t.operation, DurationKey, elapsed.Milliseconds())
		}
	}
	return elapsed
}
