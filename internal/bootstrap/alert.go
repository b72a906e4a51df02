package bootstrap

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/eleven-am/helmet-detector/internal/alert"
)

func ProvideLimiter(client *redis.Client, cfg *Config) *alert.Limiter {
	return alert.NewLimiter(client, cfg.AlertDailyLimit)
}

func ProvideHub(lc fx.Lifecycle, logger *slog.Logger) *alert.Hub {
	hub := alert.NewHub(logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			hub.Close()
			return nil
		},
	})
	return hub
}

func ProvideDispatcher(lc fx.Lifecycle, limiter *alert.Limiter, hub *alert.Hub, logger *slog.Logger) *alert.Dispatcher {
	d := alert.NewDispatcher(limiter, hub, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			d.Close()
			return nil
		},
	})
	return d
}

var AlertModule = fx.Options(
	fx.Provide(
		ProvideLimiter,
		ProvideHub,
		ProvideDispatcher,
	),
)
