package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/behancebrothers-ops/jjfg-sub000/pkg/config"
)

// Backend switches.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	NotifierKafka = "kafka"
	NotifierHTTP  = "http"
	NotifierLog   = "log"

	PaymentStripe = "stripe"
	PaymentMock   = "mock"

	RateLimitRedis = "redis"
	RateLimitLocal = "local"
)

// Config holds all configuration for the settlement service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort       int           `env:"SETTLEMENT_HTTP_PORT" envDefault:"8010"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`

	// Backends
	StorageDriver    string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	Notifier         string `env:"NOTIFIER" envDefault:"kafka"`
	PaymentProvider  string `env:"PAYMENT_PROVIDER" envDefault:"stripe"`
	RateLimitBackend string `env:"RATE_LIMIT_BACKEND" envDefault:"redis"`

	// Memory storage seed (JSON), used with STORAGE_DRIVER=memory.
	SeedFile string `env:"SEED_FILE"`

	// Pricing
	Currency            string        `env:"CURRENCY" envDefault:"USD"`
	TaxRateBps          int64         `env:"TAX_RATE_BPS" envDefault:"800"`
	DefaultShippingCost int64         `env:"DEFAULT_SHIPPING_COST" envDefault:"999"`
	CatalogTimeout      time.Duration `env:"CATALOG_TIMEOUT" envDefault:"2s"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"ecommerce"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"ecommerce_secret"`
	PostgresDB   string `env:"SETTLEMENT_DB_NAME" envDefault:"settlement_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Redis (carts and rate limiting)
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CartTTL       time.Duration `env:"CART_TTL" envDefault:"168h"`

	// Rate limiting per identity and settlement entry point
	RateLimit       int           `env:"RATE_LIMIT_REQUESTS" envDefault:"10"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_ORDER_TOPIC" envDefault:"ecommerce.order.created"`

	// Notification service (NOTIFIER=http)
	NotificationURL string        `env:"NOTIFICATION_SERVICE_URL" envDefault:"http://localhost:8009"`
	NotifyTimeout   time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`

	// Payment gateway
	StripeAPIKey    string        `env:"STRIPE_API_KEY"`
	StripeAccountID string        `env:"STRIPE_ACCOUNT_ID"`
	GatewayTimeout  time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	MockGatewayURL  string        `env:"MOCK_GATEWAY_URL" envDefault:"http://localhost:8010"`
	MockAutoPay     bool          `env:"MOCK_GATEWAY_AUTO_PAY" envDefault:"false"`
	SuccessURL      string        `env:"CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:3000/checkout/success"`
	CancelURL       string        `env:"CHECKOUT_CANCEL_URL" envDefault:"http://localhost:3000/checkout/cancel"`

	// Inventory reconciliation
	ReconcileInterval    time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1m"`
	ReconcileGracePeriod time.Duration `env:"RECONCILE_GRACE_PERIOD" envDefault:"2m"`
	ReconcileBatchSize   int           `env:"RECONCILE_BATCH_SIZE" envDefault:"50"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load settlement config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT must be > 0, got %s", c.RequestTimeout)
	}
	if err := oneOf("STORAGE_DRIVER", c.StorageDriver, StoragePostgres, StorageMemory); err != nil {
		return err
	}
	if err := oneOf("NOTIFIER", c.Notifier, NotifierKafka, NotifierHTTP, NotifierLog); err != nil {
		return err
	}
	if err := oneOf("PAYMENT_PROVIDER", c.PaymentProvider, PaymentStripe, PaymentMock); err != nil {
		return err
	}
	if err := oneOf("RATE_LIMIT_BACKEND", c.RateLimitBackend, RateLimitRedis, RateLimitLocal); err != nil {
		return err
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3-letter code, got %q", c.Currency)
	}
	if c.TaxRateBps < 0 || c.TaxRateBps > 10000 {
		return fmt.Errorf("TAX_RATE_BPS must be between 0 and 10000, got %d", c.TaxRateBps)
	}
	if c.DefaultShippingCost < 0 {
		return fmt.Errorf("DEFAULT_SHIPPING_COST must be >= 0, got %d", c.DefaultShippingCost)
	}
	if c.StorageDriver == StoragePostgres {
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required")
		}
	}
	if c.Notifier == NotifierKafka && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.Notifier == NotifierHTTP && c.NotificationURL == "" {
		return fmt.Errorf("NOTIFICATION_SERVICE_URL is required")
	}
	if c.PaymentProvider == PaymentStripe && c.StripeAPIKey == "" {
		return fmt.Errorf("STRIPE_API_KEY is required when PAYMENT_PROVIDER=stripe")
	}
	if c.RateLimit <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	if c.ReconcileInterval <= 0 || c.ReconcileBatchSize <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL and RECONCILE_BATCH_SIZE must be > 0")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// UsesRedis reports whether any component needs the Redis client.
func (c *Config) UsesRedis() bool {
	return c.StorageDriver == StoragePostgres || c.RateLimitBackend == RateLimitRedis
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %q", name, allowed, value)
}
