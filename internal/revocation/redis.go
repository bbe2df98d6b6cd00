package revocation

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	redis "github.com/redis/go-redis/v9"
)

type redisDenylist struct {
	client  redis.UniversalClient
	logger  *slog.Logger
	prefix  string
	timeout time.Duration
}

// NewRedis constructs a Redis backed Denylist shared by every API replica.
func NewRedis(addr, password string, db int, logger *slog.Logger) (Denylist, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return newRedis(client, logger), nil
}

func newRedis(client redis.UniversalClient, logger *slog.Logger) *redisDenylist {
	return &redisDenylist{
		client:  client,
		logger:  logger,
		prefix:  "notes:revoked:",
		timeout: 250 * time.Millisecond,
	}
}

func (d *redisDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.client.Set(ctx, d.prefix+tokenID, 1, ttl).Err(); err != nil {
		d.logRedisError("set", err)
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked fails closed: a Redis error is reported to the caller, which
// rejects the request.
func (d *redisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	n, err := d.client.Exists(ctx, d.prefix+tokenID).Result()
	if err != nil {
		d.logRedisError("exists", err)
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

func (d *redisDenylist) Close() {
	if d.client != nil {
		_ = d.client.Close()
	}
}

func (d *redisDenylist) logRedisError(op string, err error) {
	if d.logger == nil {
		return
	}
	d.logger.Error("redis denylist error", "op", op, "error", err)
}
