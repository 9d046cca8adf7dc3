package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange content events are published to.
const ExchangeName = "folio.content.events"

var (
	errConnectionClosed = errors.New("rabbitmq connection is closed")
	errConsumerRunning  = errors.New("rabbitmq consumer already started")
	errDeliveriesClosed = errors.New("rabbitmq delivery channel closed")
)

// amqpSession is one connection and channel with the exchange declared.
type amqpSession struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func openSession(url, exchange string) (*amqpSession, error) {
	if exchange == "" {
		exchange = ExchangeName
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	// durable, kept when unused
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &amqpSession{conn: conn, ch: ch, exchange: exchange}, nil
}

func (s *amqpSession) alive() error {
	if s.conn == nil || s.conn.IsClosed() {
		return errConnectionClosed
	}
	return nil
}

// close closes the connection, which also closes its channel.
func (s *amqpSession) close() error {
	if s.conn == nil || s.conn.IsClosed() {
		return nil
	}
	return s.conn.Close()
}

// RabbitMQPublisher publishes persistent envelopes to the exchange.
type RabbitMQPublisher struct {
	session *amqpSession
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewRabbitMQPublisher dials url and declares ExchangeName.
func NewRabbitMQPublisher(url string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	session, err := openSession(url, ExchangeName)
	if err != nil {
		return nil, err
	}
	logger.Info("RabbitMQ publisher connected", "exchange", session.exchange)
	return &RabbitMQPublisher{session: session, logger: logger}, nil
}

// Publish sends payload under routingKey. Envelope fields are copied into the
// message properties so the management UI and tracing can see them.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}
	if event, err := Decode(payload, routingKey); err == nil {
		msg.MessageId = event.EventID.String()
		msg.CorrelationId = event.Metadata.CorrelationID
		msg.Type = event.AggregateType
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.session.alive(); err != nil {
		return err
	}
	if err := p.session.ch.PublishWithContext(ctx, p.session.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.logger.Debug("event published", "routing_key", routingKey, "message_id", msg.MessageId)
	return nil
}

// Ping reports whether the broker connection is still open.
func (p *RabbitMQPublisher) Ping(context.Context) error {
	return p.session.alive()
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.close()
}

// RabbitMQConsumerConfig configures a RabbitMQConsumer.
type RabbitMQConsumerConfig struct {
	URL      string
	Exchange string
	// Queue is a durable queue shared by every process that names it; each
	// event is handled once across them. Empty declares an exclusive,
	// server-named queue so this process receives every event, which is what
	// a per-process page cache needs.
	Queue    string
	Prefetch int
	Logger   *slog.Logger
}

// RabbitMQConsumer binds a queue to the routing keys of its registry and
// dispatches deliveries through it.
type RabbitMQConsumer struct {
	session  *amqpSession
	queue    string
	prefetch int
	registry *ConsumerRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	bound   map[string]bool
	started bool
	closed  bool
}

// NewRabbitMQConsumer connects and declares the queue. Bindings are made as
// consumers register and again on Start.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if registry == nil {
		registry = NewConsumerRegistry(cfg.Logger)
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}

	session, err := openSession(cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	queue, err := declareQueue(session.ch, cfg.Queue)
	if err != nil {
		_ = session.close()
		return nil, err
	}

	logger := cfg.Logger.With("queue", queue.Name)
	logger.Info("RabbitMQ consumer connected", "exchange", session.exchange, "shared", cfg.Queue != "")
	return &RabbitMQConsumer{
		session:  session,
		queue:    queue.Name,
		prefetch: cfg.Prefetch,
		registry: registry,
		logger:   logger,
		bound:    make(map[string]bool),
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	var (
		q   amqp.Queue
		err error
	)
	if name == "" {
		// transient, exclusive, deleted with the connection
		q, err = ch.QueueDeclare("", false, true, true, false, nil)
	} else {
		q, err = ch.QueueDeclare(name, true, false, false, false, nil)
	}
	if err != nil {
		return q, fmt.Errorf("declare queue %q: %w", name, err)
	}
	return q, nil
}

// Queue returns the declared queue name.
func (c *RabbitMQConsumer) Queue() string {
	return c.queue
}

func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)
	if err := c.bind(consumer.EventTypes()...); err != nil {
		c.logger.Error("failed to bind routing keys", "error", err)
	}
}

func (c *RabbitMQConsumer) bind(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if c.bound[key] {
			continue
		}
		if err := c.session.ch.QueueBind(c.queue, key, c.session.exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
		c.bound[key] = true
		c.logger.Debug("bound routing key", "routing_key", key)
	}
	return nil
}

// Start consumes until ctx is done or Close is called. Cancelling ctx returns
// its error; Close returns nil.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errConsumerRunning
	}
	c.started = true
	c.mu.Unlock()

	if err := c.bind(c.registry.EventTypes()...); err != nil {
		return err
	}
	if err := c.session.ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	deliveries, err := c.session.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.logger.Info("consuming events", "prefetch", c.prefetch)

	for d := range deliveries {
		c.handle(ctx, d)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil
	}
	return errDeliveriesClosed
}

func (c *RabbitMQConsumer) handle(ctx context.Context, d amqp.Delivery) {
	out, err := deliver(ctx, c.registry, c.logger, d.Body, d.RoutingKey)

	var answerErr error
	switch settle(out, d.Redelivered) {
	case ack:
		answerErr = d.Ack(false)
	case requeue:
		c.logger.Warn("requeueing event", "routing_key", d.RoutingKey, "message_id", d.MessageId, "error", err)
		answerErr = d.Nack(false, true)
	case discard:
		c.logger.Error("discarding event", "routing_key", d.RoutingKey, "message_id", d.MessageId,
			"redelivered", d.Redelivered, "error", err)
		answerErr = d.Nack(false, false)
	}
	if answerErr != nil {
		c.logger.Error("failed to answer delivery", "delivery_tag", d.DeliveryTag, "error", answerErr)
	}
}

// Close ends a running Start. It is safe to call more than once.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.session.close()
	c.logger.Info("RabbitMQ consumer closed")
	return err
}
