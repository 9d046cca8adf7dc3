// Package app wires the folio services together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/folio/internal/capability/registry"
	"github.com/felixgeelhaar/folio/internal/capability/runtime"
	"github.com/felixgeelhaar/folio/internal/content/application/commands"
	"github.com/felixgeelhaar/folio/internal/content/application/queries"
	"github.com/felixgeelhaar/folio/internal/content/application/subscribers"
	contentCache "github.com/felixgeelhaar/folio/internal/content/infrastructure/cache"
	contentPersistence "github.com/felixgeelhaar/folio/internal/content/infrastructure/persistence"
	"github.com/felixgeelhaar/folio/internal/content/section"
	"github.com/felixgeelhaar/folio/internal/content/template"
	"github.com/felixgeelhaar/folio/internal/portfolio/application/capabilities"
	portfolioPersistence "github.com/felixgeelhaar/folio/internal/portfolio/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/folio/internal/shared/application"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/folio/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/folio/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/folio/pkg/config"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

// PageCacheQueue is the durable queue API processes share when Redis holds
// the page cache.
const PageCacheQueue = "folio.page-cache"

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	DB          database.Connection
	RedisClient *redis.Client
	UnitOfWork  sharedApplication.UnitOfWork
	OutboxRepo  outbox.Repository
	Metrics     *observability.PrometheusMetrics
	Health      *observability.HealthRegistry

	// Repositories
	PageRepo       *contentPersistence.PageRepository
	SectionRepo    *contentPersistence.SectionRepository
	ProjectRepo    *portfolioPersistence.ProjectRepository
	CourseRepo     *portfolioPersistence.CourseRepository
	ContactRepo    *portfolioPersistence.ContactChannelRepository
	TechnologyRepo *portfolioPersistence.TechnologyRepository

	// Capabilities
	Catalog  *registry.Catalog
	Executor *runtime.Executor
	Resolver *registry.Resolver

	// Templates
	Templates *template.Registry
	Binder    *section.Binder
	Validator *section.Validator
	PageCache queries.PageCache

	// Content handlers
	RenderPageHandler    *queries.RenderPageHandler
	ListPagesHandler     *queries.ListPagesHandler
	SavePageHandler      *commands.SavePageHandler
	SaveSectionHandler   *commands.SaveSectionHandler
	DeleteSectionHandler *commands.DeleteSectionHandler

	// Events
	Consumers         *eventbus.ConsumerRegistry
	EventPublisher    eventbus.Publisher
	EventConsumer     eventbus.Consumer
	CacheSubscriber   *subscribers.CacheInvalidationSubscriber
	OutboxProcessor   *outbox.Processor
	InProcessEventBus *eventbus.InProcessEventBus

	consumerWG sync.WaitGroup
	cancel     context.CancelFunc
}

// NewContainer creates and wires all dependencies. Postgres, Redis and
// RabbitMQ are used when configured; without them the container runs on a
// local SQLite file with an in-memory cache and an in-process event bus.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewPrometheusMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = conn
	logger.Info("connected to database", "driver", conn.Driver())

	if err := migrations.Run(ctx, conn); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))

	c.connectRedis(ctx)

	// Repositories
	c.PageRepo = contentPersistence.NewPageRepository(conn)
	c.SectionRepo = contentPersistence.NewSectionRepository(conn)
	c.ProjectRepo = portfolioPersistence.NewProjectRepository(conn)
	c.CourseRepo = portfolioPersistence.NewCourseRepository(conn)
	c.ContactRepo = portfolioPersistence.NewContactChannelRepository(conn)
	c.TechnologyRepo = portfolioPersistence.NewTechnologyRepository(conn)
	c.OutboxRepo = outbox.NewStore(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	// Capabilities
	c.Catalog = registry.NewCatalog(registry.NewRegistry(logger), logger)
	module := capabilities.NewModule(c.ProjectRepo, c.CourseRepo, c.ContactRepo, c.TechnologyRepo)
	if err := registry.RegisterModules(c.Catalog, module); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to register capabilities: %w", err)
	}
	logger.Info("registered capabilities", "count", c.Catalog.Len())

	executorConfig := runtime.DefaultExecutorConfig()
	executorConfig.CircuitBreakerEnabled = cfg.CapabilityBreakerEnabled
	executorConfig.CallTimeout = cfg.CapabilityTimeout
	if cfg.CapabilityFailureThreshold > 0 {
		executorConfig.FailureThreshold = uint32(cfg.CapabilityFailureThreshold)
	}
	c.Executor = runtime.NewExecutor(c.Metrics, logger, executorConfig)
	c.Resolver = registry.NewResolver(c.Catalog, c.Executor, logger).
		WithMetrics(c.Metrics).
		WithFallbackLocale(cfg.FallbackLocale)

	// Templates
	templates, err := loadTemplates(cfg.TemplatePaths)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Templates = templates
	logger.Info("loaded section templates", "count", templates.Len())

	c.Binder = section.NewBinder(c.Resolver, logger)
	c.Validator = section.NewValidator()

	// Page cache
	if c.RedisClient != nil {
		redisCache := contentCache.NewRedisPageCache(c.RedisClient, contentCache.DefaultNamespace)
		c.Health.Register("redis", observability.RedisHealthChecker(redisCache.Ping))
		c.PageCache = redisCache
	} else {
		c.PageCache = contentCache.NewMemoryPageCache()
	}

	// Content handlers
	c.RenderPageHandler = queries.NewRenderPageHandler(c.PageRepo, c.SectionRepo, c.Templates, c.Binder, logger).
		WithCache(c.PageCache, cfg.PageCacheTTL).
		WithMetrics(c.Metrics).
		WithDefaultLocale(cfg.DefaultLocale)
	c.ListPagesHandler = queries.NewListPagesHandler(c.PageRepo)
	c.SavePageHandler = commands.NewSavePageHandler(c.PageRepo, c.OutboxRepo, c.UnitOfWork)
	c.SaveSectionHandler = commands.NewSaveSectionHandler(
		c.PageRepo, c.SectionRepo, c.Templates, c.Validator, c.OutboxRepo, c.UnitOfWork, logger,
	)
	c.DeleteSectionHandler = commands.NewDeleteSectionHandler(
		c.PageRepo, c.SectionRepo, c.OutboxRepo, c.UnitOfWork, logger,
	)

	// Events
	c.Consumers = eventbus.NewConsumerRegistry(logger).WithMetrics(c.Metrics)
	c.CacheSubscriber = subscribers.NewCacheInvalidationSubscriber(c.PageCache, logger)
	if err := c.connectEventBus(); err != nil {
		c.Close()
		return nil, err
	}
	c.EventConsumer.RegisterConsumer(c.CacheSubscriber)

	processorConfig := outbox.DefaultProcessorConfig()
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger).
		WithMetrics(c.Metrics)

	return c, nil
}

func loadTemplates(paths []string) (*template.Registry, error) {
	if len(paths) == 0 {
		templates, err := template.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("failed to load default templates: %w", err)
		}
		return templates, nil
	}
	templates, err := template.Load(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return templates, nil
}

// connectRedis sets RedisClient when REDIS_URL is usable. Outside
// development an unreachable Redis is logged the same way; the page cache
// then stays in memory.
func (c *Container) connectRedis(ctx context.Context) {
	if c.Config.RedisURL == "" {
		return
	}
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, page cache will use in-memory fallback", "error", err)
		return
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		c.Logger.Warn("Redis not available, page cache will use in-memory fallback", "error", err)
		return
	}
	c.RedisClient = client
	c.Logger.Info("connected to Redis")
}

// connectEventBus picks RabbitMQ when configured and the in-process bus
// otherwise. A broker that cannot be reached is fatal outside development.
func (c *Container) connectEventBus() error {
	if c.Config.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err == nil {
			var consumer *eventbus.RabbitMQConsumer
			consumer, err = eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
				URL:    c.Config.RabbitMQURL,
				Queue:  c.consumerQueue(),
				Logger: c.Logger,
			}, c.Consumers)
			if err == nil {
				c.EventPublisher = publisher
				c.EventConsumer = consumer
				c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(publisher.Ping))
				return nil
			}
			_ = publisher.Close()
		}
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
	}

	c.InProcessEventBus = eventbus.NewInProcessEventBus(c.Consumers, c.Logger)
	c.EventPublisher = c.InProcessEventBus
	c.EventConsumer = c.InProcessEventBus
	return nil
}

// consumerQueue shares one queue across processes when the page cache is
// shared through Redis. A per-process memory cache needs every event, so each
// process gets its own queue.
func (c *Container) consumerQueue() string {
	if c.RedisClient == nil {
		return ""
	}
	return PageCacheQueue
}

// Start runs the outbox relay and the event consumer in the background.
func (c *Container) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	if err := c.OutboxProcessor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start outbox processor: %w", err)
	}

	c.consumerWG.Add(1)
	go func() {
		defer c.consumerWG.Done()
		if err := c.EventConsumer.Start(ctx); err != nil && ctx.Err() == nil {
			c.Logger.Error("event consumer stopped", "error", err)
		}
	}()
	return nil
}

// Close releases every resource the container opened.
func (c *Container) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if _, inProcess := c.EventConsumer.(*eventbus.InProcessEventBus); c.EventConsumer != nil && !inProcess {
		if err := c.EventConsumer.Close(); err != nil {
			c.Logger.Warn("error closing event consumer", "error", err)
		}
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	c.consumerWG.Wait()

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DB.Driver())
		}
	}
}
