package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"parcel-delivery/internal/config"
	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/http/handlers"
	obs "parcel-delivery/internal/http/middleware"
	"parcel-delivery/internal/http/router"
	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/metrics"
	"parcel-delivery/internal/queue"
	"parcel-delivery/internal/repository"
	"parcel-delivery/internal/service/delivery"
	"parcel-delivery/internal/service/deliveryman"
	"parcel-delivery/internal/service/recipient"
)

type dbConnectFunc func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect  dbConnectFunc
	loadConfig func() (*config.Config, error)
	logFatalf  func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect:  connectDbWithRetry,
		loadConfig: config.Load,
		logFatalf:  log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithConfig replaces config loading with a fixed config.
func (b *ContainerBuilder) WithConfig(cfg *config.Config) *ContainerBuilder {
	if cfg != nil {
		b.loadConfig = func() (*config.Config, error) { return cfg, nil }
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the API container.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the notification worker container.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadConfig); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerQueue(container); err != nil {
		return nil, fmt.Errorf("queue: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// The worker never touches the record store: jobs carry everything the mail needs.
func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadConfig); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerQueue(container); err != nil {
		return nil, fmt.Errorf("queue: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the API container with default settings.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the worker container with default settings.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

// appMetrics holds every collector registered on the process registry.
type appMetrics struct {
	queue       *queue.Metrics
	transitions *prometheus.CounterVec
	http        obs.HTTPMetrics
}

func newAppMetrics(reg *prometheus.Registry) (*appMetrics, error) {
	m := &appMetrics{
		queue: &queue.Metrics{
			Processed: metrics.NewJobsProcessedTotal(),
			Duration:  metrics.NewJobDurationSeconds(),
			Deferred:  metrics.NewJobsDeferredTotal(),
		},
		transitions: metrics.NewTransitionsTotal(),
		http: obs.HTTPMetrics{
			Requests: metrics.NewHTTPRequestsTotal(),
			Duration: metrics.NewHTTPRequestDuration(),
		},
	}
	for _, c := range []prometheus.Collector{
		m.queue.Processed, m.queue.Duration, m.queue.Deferred,
		m.transitions, m.http.Requests, m.http.Duration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func registerCore(container *dig.Container, ctx context.Context, load func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		load,
		NewLogger,
		newRegistry,
		newAppMetrics,
		func(cfg *config.Config) (domain.RetrievalPolicy, error) {
			return cfg.Delivery.Policy()
		},
		newRetryPolicy,
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := repository.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			logger.Info("schema applied")
		}
		return pool, nil
	}
	return provideAll(container,
		providerDB,
		func(p *pgxpool.Pool) *repository.DeliveryRepo { return repository.NewDeliveryRepo(p) },
		func(p *pgxpool.Pool) *repository.ProblemRepo { return repository.NewProblemRepo(p) },
		func(p *pgxpool.Pool) *repository.DeliverymanRepo { return repository.NewDeliverymanRepo(p) },
		func(p *pgxpool.Pool) *repository.RecipientRepo { return repository.NewRecipientRepo(p) },
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		func(
			cfg *config.Config,
			logger logx.Logger,
			policy domain.RetrievalPolicy,
			m *appMetrics,
			deliveries *repository.DeliveryRepo,
			problems *repository.ProblemRepo,
			deliverymen *repository.DeliverymanRepo,
			recipients *repository.RecipientRepo,
			mgr *queue.Manager,
		) *delivery.Service {
			return delivery.NewService(delivery.Deps{
				Deliveries:  deliveries,
				Problems:    problems,
				Deliverymen: deliverymen,
				Recipients:  recipients,
				Notifier:    mgr,
			}, policy, cfg.Delivery.OperationTimeout, logger, delivery.WithMetrics(m.transitions))
		},
		func(cfg *config.Config, logger logx.Logger, repo *repository.DeliverymanRepo) *deliveryman.Service {
			return deliveryman.NewService(repo, cfg.Delivery.OperationTimeout, logger)
		},
		func(cfg *config.Config, logger logx.Logger, repo *repository.RecipientRepo) *recipient.Service {
			return recipient.NewService(repo, cfg.Delivery.OperationTimeout, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	routerProvider := func(
		logger logx.Logger,
		reg *prometheus.Registry,
		m *appMetrics,
		base *handlers.Handlers,
		deliveries *handlers.DeliveryHandler,
		deliverymen *handlers.DeliverymanHandler,
		recipients *handlers.RecipientHandler,
	) http.Handler {
		return router.New(router.Deps{
			Logger:       logger,
			Base:         base,
			Deliveries:   deliveries,
			Deliverymen:  deliverymen,
			Recipients:   recipients,
			Metrics:      m.http,
			MetricsRoute: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		})
	}
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	baseProvider := func(logger logx.Logger, pool *pgxpool.Pool, broker queue.Broker) *handlers.Handlers {
		h := handlers.New(logger).WithCheck("postgres", pool.Ping)
		if p, ok := broker.(interface{ Ping(context.Context) error }); ok {
			h.WithCheck("broker", p.Ping)
		}
		return h
	}
	return provideAll(container,
		baseProvider,
		handlers.NewDeliveryUsecase,
		handlers.NewDeliveryHandler,
		handlers.NewDeliverymanUsecase,
		handlers.NewDeliverymanHandler,
		handlers.NewRecipientUsecase,
		handlers.NewRecipientHandler,
		routerProvider,
		serverProvider,
	)
}
