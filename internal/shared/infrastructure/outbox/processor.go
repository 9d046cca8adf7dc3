package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

// ProcessorConfig tunes the relay loop.
type ProcessorConfig struct {
	PollInterval time.Duration
	BatchSize    int

	// MaxRetries is the number of publish attempts before a message is dead
	// lettered. Zero dead-letters on the first failure.
	MaxRetries int

	// Retry delays double from RetryBackoffBase up to RetryBackoffMax.
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration

	// Retention is how long published messages are kept. Zero keeps them.
	Retention time.Duration
}

func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     250 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        7 * 24 * time.Hour,
	}
}

// backoff returns the delay before attempt number attempt (1-based).
func (c ProcessorConfig) backoff(attempt int) time.Duration {
	base, ceiling := c.RetryBackoffBase, c.RetryBackoffMax
	if base <= 0 {
		base = time.Second
	}
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	delay := base
	for i := 1; i < attempt && delay < ceiling; i++ {
		delay *= 2
	}
	return min(delay, ceiling)
}

// exhausted reports whether a message that already failed retries times has
// no attempts left after failing again.
func (c ProcessorConfig) exhausted(retries int) bool {
	return retries+1 >= c.MaxRetries
}

// Stats is a snapshot of relay progress.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

// LogValue groups the counters under one log attribute.
func (s Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Bool("running", s.IsRunning),
		slog.Uint64("published", s.PublishedCount),
		slog.Uint64("failed", s.FailedCount),
		slog.Uint64("dead", s.DeadCount),
		slog.Float64("lag_seconds", s.LagSeconds),
	}
	if s.LastError != "" {
		attrs = append(attrs, slog.String("last_error", s.LastError))
	}
	return slog.GroupValue(attrs...)
}

// Processor relays stored messages to the event bus. Each message is marked
// published, scheduled for retry or dead lettered after one attempt.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	statsMu   sync.Mutex
	stats     Stats
	lastPrune time.Time
}

func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultProcessorConfig().BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultProcessorConfig().PollInterval
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger.With("component", "outbox"),
		metrics:   observability.NoopMetrics{},
	}
}

// WithMetrics counts published events and failed attempts.
func (p *Processor) WithMetrics(metrics observability.Metrics) *Processor {
	if metrics != nil {
		p.metrics = metrics
	}
	return p
}

// Start runs the relay loop until ctx is done or Stop is called. Starting a
// running processor does nothing.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
	return nil
}

// Stop cancels the loop and waits for the current batch to finish.
func (p *Processor) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("outbox processor stopped")
}

func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Processor) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// A full batch means more are waiting; drain before sleeping again.
		for {
			n, err := p.relayBatch(ctx)
			if err != nil {
				p.logger.Error("outbox batch failed", observability.ErrorKey, err)
			}
			if err != nil || n < p.config.BatchSize || ctx.Err() != nil {
				break
			}
		}
		p.prune(ctx)
	}
}

// ProcessOnce relays one batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	_, err := p.relayBatch(ctx)
	return err
}

func (p *Processor) relayBatch(ctx context.Context) (n int, err error) {
	timer := observability.StartTimer("outbox.batch").WithMetrics(p.metrics)
	defer func() { timer.Stop(err) }()

	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.noteError(err)
		return 0, fmt.Errorf("load unpublished: %w", err)
	}
	p.noteBatch(messages)

	for _, msg := range messages {
		p.relay(ctx, msg)
	}
	return len(messages), nil
}

func (p *Processor) relay(ctx context.Context, msg *Message) {
	log := p.logger.With(
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		observability.CorrelationIDKey, msg.CorrelationID(),
	)

	pubErr := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload)
	if pubErr == nil {
		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			log.Error("published but not marked, it will be sent again", observability.ErrorKey, err)
			return
		}
		p.note(func(s *Stats) { s.PublishedCount++ })
		p.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", msg.RoutingKey))
		return
	}

	p.metrics.Counter(observability.MetricOperationErrors, 1, observability.T("operation", "outbox.publish"))

	if p.config.exhausted(msg.RetryCount) {
		log.Error("dead lettering message", "attempts", msg.RetryCount+1, observability.ErrorKey, pubErr)
		p.noteFailure(pubErr, true)
		if err := p.repo.MarkDead(ctx, msg.ID, pubErr.Error()); err != nil {
			log.Error("failed to dead letter message", observability.ErrorKey, err)
		}
		return
	}

	delay := p.config.backoff(msg.RetryCount + 1)
	log.Warn("publish failed, retrying", "retry_in", delay, "retry_count", msg.RetryCount, observability.ErrorKey, pubErr)
	p.noteFailure(pubErr, false)
	if err := p.repo.MarkFailed(ctx, msg.ID, pubErr.Error(), time.Now().Add(delay)); err != nil {
		log.Error("failed to schedule retry", observability.ErrorKey, err)
	}
}

// prune deletes expired published messages at most once an hour.
func (p *Processor) prune(ctx context.Context) {
	if p.config.Retention <= 0 || time.Since(p.lastPrune) < time.Hour {
		return
	}
	p.lastPrune = time.Now()

	deleted, err := p.repo.DeleteOld(ctx, time.Now().Add(-p.config.Retention))
	if err != nil {
		p.logger.Warn("failed to prune outbox", observability.ErrorKey, err)
		return
	}
	if deleted > 0 {
		p.logger.Info("pruned published outbox messages", "count", deleted)
	}
}

// GetStats returns a snapshot of the counters.
func (p *Processor) GetStats() Stats {
	p.statsMu.Lock()
	stats := p.stats
	p.statsMu.Unlock()

	stats.IsRunning = p.IsRunning()
	return stats
}

func (p *Processor) note(update func(*Stats)) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	update(&p.stats)
}

func (p *Processor) noteError(err error) {
	now := time.Now()
	p.note(func(s *Stats) {
		s.LastError = err.Error()
		s.LastErrorAt = &now
	})
}

func (p *Processor) noteFailure(err error, dead bool) {
	p.noteError(err)
	p.note(func(s *Stats) {
		if dead {
			s.DeadCount++
		} else {
			s.FailedCount++
		}
	})
}

// noteBatch records how far behind the oldest pending message is.
func (p *Processor) noteBatch(messages []*Message) {
	now := time.Now()
	var oldest *time.Time
	for _, msg := range messages {
		if oldest == nil || msg.CreatedAt.Before(*oldest) {
			created := msg.CreatedAt
			oldest = &created
		}
	}

	p.note(func(s *Stats) {
		s.LastProcessedAt = &now
		s.OldestMessageAt = oldest
		s.LagSeconds = 0
		if oldest != nil {
			s.LagSeconds = now.Sub(*oldest).Seconds()
		}
	})
}
