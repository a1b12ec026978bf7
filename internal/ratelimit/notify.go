package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/voltmesh/gridadmin/internal/config"
)

const keyNotifyPriority = "notify:dispatch:priority:%s"

// NotifyLimiter throttles outbound notification deliveries per priority.
// Without redis it is disabled and every dispatch is allowed through.
type NotifyLimiter struct {
	bucket *TokenBucket

	perHour map[string]int
}

func NewNotifyLimiter(cfg config.Config) *NotifyLimiter {
	limiter := &NotifyLimiter{
		perHour: map[string]int{
			"LOW":    cfg.Notify.LowPerHour,
			"MEDIUM": cfg.Notify.MediumPerHour,
			"HIGH":   cfg.Notify.HighPerHour,
			"URGENT": cfg.Notify.UrgentPerHour,
		},
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return limiter
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	})
	limiter.bucket = NewTokenBucket(client)
	return limiter
}

// Allow reports whether a delivery at the given priority may go out now.
// Limiter errors fail open: a broken redis must not silence notifications.
func (l *NotifyLimiter) Allow(ctx context.Context, priority string) bool {
	if l == nil || l.bucket == nil {
		return true
	}

	perHour, ok := l.perHour[strings.ToUpper(priority)]
	if !ok || perHour <= 0 {
		return true
	}

	result, err := l.bucket.Allow(
		ctx,
		fmt.Sprintf(keyNotifyPriority, strings.ToUpper(priority)),
		float64(perHour)/3600.0,
		perHour,
	)
	if err != nil {
		return true
	}
	return result.Allowed
}
