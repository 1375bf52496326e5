package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/marketplace/pkg/postgresql"
	"github.com/muhammadchandra19/marketplace/pkg/redis"
)

// Config represents the application configuration.
type Config struct {
	App        AppConfig         `envPrefix:"APP_"`
	PostgreSQL postgresql.Config `envPrefix:"POSTGRES_"`
	Redis      redis.Config      `envPrefix:"REDIS_"`
	OrderKafka OrderKafkaConfig  `envPrefix:"ORDER_KAFKA_"`
	TradeKafka TradeKafkaConfig  `envPrefix:"TRADE_KAFKA_"`
	Matching   MatchingConfig    `envPrefix:"MATCHING_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name          string `env:"NAME" envDefault:"matching-service"`
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort      int    `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
}

// OrderKafkaConfig represents the Kafka configuration for order intake.
type OrderKafkaConfig struct {
	Brokers         []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic           string   `env:"TOPIC" envDefault:"orders"`
	ConsumerGroup   string   `env:"CONSUMER_GROUP" envDefault:"matching-service"`
	ConsumerTimeout int      `env:"CONSUMER_TIMEOUT" envDefault:"5"`
	MaxRetries      int      `env:"MAX_RETRIES" envDefault:"3"`
}

// TradeKafkaConfig represents the Kafka configuration for the trade feed.
type TradeKafkaConfig struct {
	Brokers      []string      `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic        string        `env:"TOPIC" envDefault:"trades"`
	BatchSize    int           `env:"BATCH_SIZE" envDefault:"100"`
	BatchTimeout time.Duration `env:"BATCH_TIMEOUT" envDefault:"10ms"`
}

// MatchingConfig tunes the matching engine.
type MatchingConfig struct {
	QueryTimeout    time.Duration `env:"QUERY_TIMEOUT" envDefault:"2s"`
	MailboxSize     int           `env:"MAILBOX_SIZE" envDefault:"256"`
	ProductCacheTTL time.Duration `env:"PRODUCT_CACHE_TTL" envDefault:"5m"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
