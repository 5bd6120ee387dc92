package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process-wide settings. Everything comes from the
// environment; there are no ambient globals, the loaded struct is passed
// to constructors explicitly.
type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Postgres
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"bookings"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`

	// Redis
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	// Kafka
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`

	// Inventory (hotel) service
	HotelServiceURL       string        `envconfig:"HOTEL_SERVICE_URL" default:"http://hotel-service:8081"`
	GatewayTimeout        time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"5s"`
	GatewayMaxAttempts    int           `envconfig:"GATEWAY_MAX_ATTEMPTS" default:"3"`
	GatewayInitialBackoff time.Duration `envconfig:"GATEWAY_INITIAL_BACKOFF" default:"1s"`
	GatewayMaxBackoff     time.Duration `envconfig:"GATEWAY_MAX_BACKOFF" default:"8s"`

	// Idempotency cache entries outlive any plausible client retry window.
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	// A PENDING booking older than this has an unknown confirm outcome and
	// is cancelled defensively by the recovery worker.
	PendingMaxAge time.Duration `envconfig:"PENDING_MAX_AGE" default:"10m"`

	// Observability
	MetricsAddr  string `envconfig:"METRICS_ADDR" default:":9090"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"otel-collector:4317"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
