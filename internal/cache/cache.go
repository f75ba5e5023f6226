package cache

import (
	"context"
	"fmt"

	"pomodoro/pkg/config"
	"pomodoro/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(New)

type Params struct {
	fx.In
	Lifecycle fx.Lifecycle
	Configs   config.Configs
	Logger    logger.Logger
}

// New builds the redis client. It does not require redis to be up: the only
// consumer is the rate limiter, which lets traffic through when redis fails.
func New(p Params) (*redis.Client, error) {
	opts, err := redis.ParseURL(p.Configs.Peek().Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				p.Logger.Warn("redis unavailable, rate limiting will fail open", zap.Error(err))
				return nil
			}
			p.Logger.Info("successfully connected to redis", zap.String("addr", opts.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
