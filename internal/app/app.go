package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/config"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/gateway"
	handler "github.com/behancebrothers-ops/jjfg-sub000/internal/handler/http"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/metrics"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/notification"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/ratelimit"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository/memory"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository/postgres"
	redisrepo "github.com/behancebrothers-ops/jjfg-sub000/internal/repository/redis"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/service"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/worker"
	"github.com/behancebrothers-ops/jjfg-sub000/migrations"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/database"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/health"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/httpclient"
	pkgkafka "github.com/behancebrothers-ops/jjfg-sub000/pkg/kafka"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/tracing"
)

const serviceName = "settlement"

// stores groups the repositories of one storage driver.
type stores struct {
	catalog   repository.CatalogRepository
	discounts repository.DiscountRepository
	shipping  repository.ShippingRepository
	orders    repository.OrderRepository
	inventory repository.InventoryRepository
	carts     repository.CartRepository
}

// App wires together all dependencies and runs the settlement service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	settlement     *service.SettlementService
	reconciler     *worker.Reconciler
	localLimiter   *ratelimit.LocalLimiter
	tracerShutdown func(context.Context) error

	workers       sync.WaitGroup
	cancelWorkers context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	if cfg.UsesRedis() {
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			a.closeStores()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		logger.Info("connected to Redis", slog.String("host", cfg.RedisHost), slog.Int("port", cfg.RedisPort))
		healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	st, err := a.initStores(ctx, healthHandler)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	limiter := a.initLimiter()

	gw, err := a.initGateway()
	if err != nil {
		a.closeStores()
		return nil, err
	}

	notifier := a.initNotifier(ctx, healthHandler)

	// Build the dependency graph.
	m := metrics.New(prometheus.DefaultRegisterer)
	shipping := service.NewShippingTable(st.shipping, cfg.DefaultShippingCost, logger)
	inventory := service.NewInventoryUpdater(st.inventory, st.orders, m, logger)
	a.settlement = service.NewSettlementService(service.Dependencies{
		Pricing:   service.NewPricingValidator(st.catalog, cfg.CatalogTimeout),
		Discounts: service.NewDiscountLedger(st.discounts, nil),
		Shipping:  shipping,
		Factory:   service.NewOrderFactory(shipping, service.FactoryConfig{TaxRateBps: cfg.TaxRateBps, Currency: cfg.Currency}),
		Inventory: inventory,
		Orders:    st.orders,
		Carts:     st.carts,
		Gateway:   gw,
		Limiter:   limiter,
		Notifier:  notifier,
		Metrics:   m,
		Logger:    logger,
	}, service.Config{
		GatewayTimeout: cfg.GatewayTimeout,
		NotifyTimeout:  cfg.NotifyTimeout,
		SuccessURL:     cfg.SuccessURL,
		CancelURL:      cfg.CancelURL,
	})

	a.reconciler = worker.NewReconciler(st.orders, inventory, m, logger, worker.ReconcilerConfig{
		Interval:    cfg.ReconcileInterval,
		GracePeriod: cfg.ReconcileGracePeriod,
		BatchSize:   cfg.ReconcileBatchSize,
	})

	router := handler.NewRouter(a.settlement, healthHandler, logger, cfg.RequestTimeout)
	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// initStores connects the configured storage driver.
func (a *App) initStores(ctx context.Context, healthHandler *health.Handler) (*stores, error) {
	cfg, logger := a.cfg, a.logger

	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		if cfg.SeedFile != "" {
			f, err := os.Open(cfg.SeedFile)
			if err != nil {
				return nil, fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()
			if err := store.LoadSeed(f); err != nil {
				return nil, fmt.Errorf("load seed file: %w", err)
			}
		}
		logger.Warn("using in-memory storage, data is lost on restart")
		return &stores{
			catalog: store, discounts: store, shipping: store,
			orders: store, inventory: store, carts: store,
		}, nil
	}

	pool, err := database.NewPostgresPool(ctx, &database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, serviceName)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	return &stores{
		catalog:   postgres.NewCatalogRepository(pool),
		discounts: postgres.NewDiscountRepository(pool),
		shipping:  postgres.NewShippingRepository(pool),
		orders:    postgres.NewOrderRepository(pool),
		inventory: postgres.NewInventoryRepository(pool),
		carts:     redisrepo.NewCartRepository(a.redis, a.cfg.CartTTL),
	}, nil
}

func (a *App) initLimiter() ratelimit.Limiter {
	if a.cfg.RateLimitBackend == config.RateLimitRedis {
		return ratelimit.NewRedisLimiter(a.redis, a.cfg.RateLimit, a.cfg.RateLimitWindow)
	}
	a.localLimiter = ratelimit.NewLocalLimiter(a.cfg.RateLimit, a.cfg.RateLimitWindow, 10*a.cfg.RateLimitWindow)
	return a.localLimiter
}

func (a *App) initGateway() (gateway.PaymentGateway, error) {
	var gw gateway.PaymentGateway
	switch a.cfg.PaymentProvider {
	case config.PaymentMock:
		a.logger.Warn("using mock payment gateway", slog.Bool("auto_pay", a.cfg.MockAutoPay))
		gw = gateway.NewMock(a.cfg.MockGatewayURL, a.cfg.MockAutoPay)
	default:
		s, err := gateway.NewStripe(gateway.StripeConfig{
			APIKey:    a.cfg.StripeAPIKey,
			AccountID: a.cfg.StripeAccountID,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("init stripe gateway: %w", err)
		}
		gw = s
	}
	return gateway.NewBreaker(gw, httpclient.DefaultCircuitBreakerConfig("payment-gateway"), a.logger), nil
}

// initNotifier builds the configured notification channel. Every
// notification is also written to the log.
func (a *App) initNotifier(ctx context.Context, healthHandler *health.Handler) notification.Notifier {
	logNotifier := notification.NewLogNotifier(a.logger)

	switch a.cfg.Notifier {
	case config.NotifierKafka:
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
		if err := pingKafkaWithRetry(ctx, producer, a.logger); err != nil {
			a.logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
				slog.String("error", err.Error()),
			)
		} else {
			a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
		}
		a.producer = producer
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
		return notification.NewFanout(notification.NewKafkaNotifier(producer, a.cfg.KafkaTopic, serviceName), logNotifier)

	case config.NotifierHTTP:
		client := httpclient.New(httpclient.DefaultConfig())
		cb := httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("notification-service"), a.logger)
		return notification.NewFanout(notification.NewHTTPNotifier(cb, a.cfg.NotificationURL), logNotifier)

	default:
		return logNotifier
	}
}

// Run starts the HTTP server and background jobs, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Start background jobs.
	workerCtx, cancel := context.WithCancel(context.Background())
	a.cancelWorkers = cancel

	a.workers.Add(1)
	go func() {
		defer a.workers.Done()
		a.reconciler.Run(workerCtx)
	}()

	if a.localLimiter != nil {
		a.workers.Add(1)
		go func() {
			defer a.workers.Done()
			a.localLimiter.Run(workerCtx)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	return errors.Join(runErr, a.Shutdown())
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Pending order notifications
// 3. Background workers
// 4. Kafka producer
// 5. Redis client
// 6. PostgreSQL pool
// 7. Tracer (flush spans recorded by everything above)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (10s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Let detached notifications finish (5s budget).
	notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer notifyCancel()
	if err := a.settlement.WaitForNotifications(notifyCtx); err != nil {
		a.logger.Warn("pending notifications abandoned", slog.String("error", err.Error()))
	}

	// 3. Stop background workers.
	if a.cancelWorkers != nil {
		a.cancelWorkers()
		a.workers.Wait()
	}

	// 4-6. Close Kafka, Redis and PostgreSQL.
	errs = append(errs, a.closeStores())

	// 7. Flush pending spans.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeStores releases the producer and the store connections that were
// opened. It is safe on a partially initialized App.
func (a *App) closeStores() error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return errors.Join(errs...)
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s with ±25% jitter between them).
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if lastErr = producer.Ping(ctx); lastErr == nil {
			return nil
		}
		if attempt < 2 {
			base := time.Duration(1<<uint(attempt)) * time.Second
			jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
			wait := base + jitter
			logger.Warn("kafka producer ping failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("kafka producer ping failed after 3 attempts: %w", lastErr)
}
