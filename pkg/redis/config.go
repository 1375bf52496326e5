package redis

import (
	"fmt"
	"time"
)

// Mode selects the Redis deployment topology.
type Mode string

const (
	// Standalone connects to a single Redis node.
	Standalone Mode = "standalone"
	// Cluster connects to a Redis cluster.
	Cluster Mode = "cluster"
)

// Config is the Redis client configuration.
type Config struct {
	Mode     Mode     `env:"MODE" envDefault:"standalone"`
	Addrs    []string `env:"ADDRS" envSeparator:"," envDefault:"localhost:6379"`
	Username string   `env:"USERNAME"`
	Password string   `env:"PASSWORD"`
	DB       int      `env:"DB" envDefault:"0"`

	// Command retries inside go-redis
	MaxRetries      int           `env:"MAX_RETRIES" envDefault:"3"`
	MinRetryBackoff time.Duration `env:"MIN_RETRY_BACKOFF" envDefault:"8ms"`
	MaxRetryBackoff time.Duration `env:"MAX_RETRY_BACKOFF" envDefault:"512ms"`

	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`

	// Pool settings
	PoolSize        int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"30m"`
	PoolTimeout     time.Duration `env:"POOL_TIMEOUT" envDefault:"4s"`

	// Key namespace shared by every consumer of this client
	PrefixKey  string        `env:"PREFIX_KEY" envDefault:"marketplace:"`
	DefaultTTL time.Duration `env:"DEFAULT_TTL" envDefault:"5m"`

	// Attempts made by Reconnect before giving up
	ReconnectMaxRetries int `env:"RECONNECT_MAX_RETRIES" envDefault:"5"`
}

// DefaultConfig returns a standalone configuration suitable for local
// development.
func DefaultConfig() *Config {
	return &Config{
		Mode:                Standalone,
		Addrs:               []string{"localhost:6379"},
		MaxRetries:          3,
		MinRetryBackoff:     8 * time.Millisecond,
		MaxRetryBackoff:     512 * time.Millisecond,
		ConnectTimeout:      5 * time.Second,
		PoolSize:            10,
		MinIdleConns:        2,
		MaxIdleConns:        5,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     30 * time.Minute,
		PoolTimeout:         4 * time.Second,
		PrefixKey:           "marketplace:",
		DefaultTTL:          5 * time.Minute,
		ReconnectMaxRetries: 5,
	}
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if len(c.Addrs) == 0 {
		return fmt.Errorf("no addresses configured")
	}
	if c.Mode != Standalone && c.Mode != Cluster {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool size must be positive")
	}
	return nil
}
