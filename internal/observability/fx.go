package observability

import (
	"github.com/voltmesh/gridadmin/internal/config"
	"github.com/voltmesh/gridadmin/internal/observability/logger"
	"github.com/voltmesh/gridadmin/internal/observability/metrics"
	"go.uber.org/fx"
)

// Module wires the logger and the prometheus metrics registry.
var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(func(cfg config.Config) *metrics.Metrics {
		return metrics.WithConfig(metrics.Config{
			ServiceName: cfg.AppName,
			Environment: cfg.Environment,
		})
	}),
)
