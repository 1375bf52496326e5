package redis

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type client struct {
	logger  logger.Interface
	config  *Config
	cmdable redis.Cmdable
}

// NewClient creates a Redis client. Connect must be called before use.
func NewClient(log logger.Interface, config *Config) Client {
	return &client{
		logger: log,
		config: config,
	}
}

func (c *client) Connect(ctx context.Context) error {
	if err := c.config.validate(); err != nil {
		return errors.NewErrorDetailsWithObject(
			"Invalid Redis configuration",
			string(errors.RedisConfigError),
			"connect",
			err.Error(),
		)
	}

	if c.config.Mode == Cluster {
		c.cmdable = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           c.config.Addrs,
			Username:        c.config.Username,
			Password:        c.config.Password,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	} else {
		c.cmdable = redis.NewClient(&redis.Options{
			Addr:            c.config.Addrs[0],
			Username:        c.config.Username,
			Password:        c.config.Password,
			DB:              c.config.DB,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	}

	return c.cmdable.Ping(ctx).Err()
}

// Reconnect retries Connect with exponential backoff and jitter. It
// returns false once the attempts are exhausted or ctx is cancelled.
func (c *client) Reconnect(ctx context.Context) bool {
	for attempt := 0; attempt < c.config.ReconnectMaxRetries; attempt++ {
		backoff := min(
			c.config.MinRetryBackoff*time.Duration(math.Pow(2, float64(attempt))),
			c.config.MaxRetryBackoff,
		)
		delay := backoff + time.Duration(rand.IntN(1000))*time.Millisecond

		c.logger.Info("Reconnecting to Redis",
			logger.Field{Key: "attempt", Value: attempt + 1},
			logger.Field{Key: "delay", Value: delay},
		)

		select {
		case <-ctx.Done():
			c.logger.Info("Reconnect cancelled", logger.Field{
				Key:   "reason",
				Value: ctx.Err(),
			})
			return false
		case <-time.After(delay):
			connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := c.Connect(connectCtx)
			cancel()
			if err == nil {
				c.logger.Info("Reconnected to Redis successfully", logger.Field{
					Key:   "attempt",
					Value: attempt + 1,
				})
				return true
			}
			c.logger.Error(errors.TracerFromError(err), logger.Field{
				Key:   "attempt",
				Value: attempt + 1,
			})
		}
	}

	return false
}

func (c *client) Disconnect(ctx context.Context) error {
	switch conn := c.cmdable.(type) {
	case *redis.Client:
		return conn.Close()
	case *redis.ClusterClient:
		return conn.Close()
	default:
		return errors.NewErrorDetails("Redis client is not connected", string(errors.RedisConnectionError), "disconnect")
	}
}

func (c *client) Ping(ctx context.Context) error {
	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewErrorDetailsWithObject("Failed to ping Redis", string(errors.RedisConnectionError), "ping", err.Error())
	}
	return nil
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.cmdable.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.NewErrorDetailsWithObject("Failed to get value from Redis", string(errors.RedisGetError), key, err.Error())
	}
	return val, nil
}

func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := c.cmdable.Set(ctx, key, value, expiration).Err(); err != nil {
		return errors.NewErrorDetailsWithObject("Failed to set value in Redis", string(errors.RedisSetError), key, err.Error())
	}
	return nil
}

func (c *client) SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	ok, err := c.cmdable.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		return false, errors.NewErrorDetailsWithObject("Failed to set value with NX in Redis", string(errors.RedisSetError), key, err.Error())
	}
	return ok, nil
}

func (c *client) Del(ctx context.Context, keys ...string) (int64, error) {
	deleted, err := c.cmdable.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errors.NewErrorDetailsWithObject("Failed to delete keys from Redis", string(errors.RedisDelError), "del", err.Error())
	}
	return deleted, nil
}
