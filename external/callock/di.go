package callock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/callinterview/internal/callock"
	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
)

const redisPingTimeout = 5 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (callock.Locker, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.RedisURL == "" {
			return callock.NewKeyedMutex(), nil
		}
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("%w: REDIS_URL: %v", config.ErrInvalidConfig, err)
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		slog.Info("using redis call lock", "addr", opts.Addr, "ttl", c.CallLockTTL)
		return NewRedisLocker(client, c.CallLockTTL), nil
	})
}
