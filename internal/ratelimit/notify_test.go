package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltmesh/gridadmin/internal/config"
)

func TestNotifyLimiterWithoutRedisAllowsEverything(t *testing.T) {
	limiter := NewNotifyLimiter(config.Config{
		Notify: config.NotifyConfig{LowPerHour: 1, UrgentPerHour: 1},
	})

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow(ctx, "LOW"))
		assert.True(t, limiter.Allow(ctx, "URGENT"))
	}
}

func TestNotifyLimiterNilIsSafe(t *testing.T) {
	var limiter *NotifyLimiter
	assert.True(t, limiter.Allow(context.Background(), "HIGH"))
}

func TestNotifyLimiterUnknownPriorityAllowed(t *testing.T) {
	limiter := NewNotifyLimiter(config.Config{})
	assert.True(t, limiter.Allow(context.Background(), "WHENEVER"))
}
