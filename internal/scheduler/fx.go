package scheduler

import (
	"time"

	"github.com/voltmesh/gridadmin/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			Timezone:     cfg.Scheduler.Timezone,
			JobTimeout:   time.Duration(cfg.Scheduler.JobTimeoutSeconds) * time.Second,
			DisabledJobs: cfg.Scheduler.DisabledJobs,
		}
	}),
	fx.Provide(New),
	fx.Invoke(RegisterJobs),
)
