package redis

import (
	"context"
	"time"
)

//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=redis_mock

// Client is the Redis surface the application depends on. Get treats a
// missing key as an empty string with no error.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	Reconnect(ctx context.Context) bool

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) (int64, error)
}
