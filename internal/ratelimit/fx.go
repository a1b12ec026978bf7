package ratelimit

import (
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/voltmesh/gridadmin/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewNotifyLimiter),
	fx.Provide(NewLockerFromConfig),
)

func NewLockerFromConfig(cfg config.Config) *Locker {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	return NewLocker(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	}))
}
