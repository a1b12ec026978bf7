package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/voltmesh/gridadmin/internal/alert"
	"github.com/voltmesh/gridadmin/internal/billingstats"
	"github.com/voltmesh/gridadmin/internal/clock"
	"github.com/voltmesh/gridadmin/internal/config"
	"github.com/voltmesh/gridadmin/internal/consumer"
	"github.com/voltmesh/gridadmin/internal/migration"
	"github.com/voltmesh/gridadmin/internal/notification"
	"github.com/voltmesh/gridadmin/internal/observability"
	"github.com/voltmesh/gridadmin/internal/providers"
	"github.com/voltmesh/gridadmin/internal/ratelimit"
	"github.com/voltmesh/gridadmin/internal/scheduler"
	"github.com/voltmesh/gridadmin/pkg/db"
)

// Scheduler-only entrypoint: runs the cron jobs without the HTTP server or
// the websocket hub. Deployments that scale the API horizontally run exactly
// one of these so sweeps fire once per schedule; the redis lock guards
// against accidental doubles.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,

		ratelimit.Module,
		providers.Module,

		consumer.Module,
		alert.Module,
		notification.Module,
		billingstats.Module,

		scheduler.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("NODE_ID"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = v
		}
	}
	return snowflake.NewNode(nodeID)
}
