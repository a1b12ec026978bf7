package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/voltmesh/gridadmin/internal/account"
	"github.com/voltmesh/gridadmin/internal/alert"
	"github.com/voltmesh/gridadmin/internal/auth"
	"github.com/voltmesh/gridadmin/internal/billingstats"
	"github.com/voltmesh/gridadmin/internal/clock"
	"github.com/voltmesh/gridadmin/internal/config"
	"github.com/voltmesh/gridadmin/internal/consumer"
	"github.com/voltmesh/gridadmin/internal/meter"
	"github.com/voltmesh/gridadmin/internal/migration"
	"github.com/voltmesh/gridadmin/internal/notification"
	"github.com/voltmesh/gridadmin/internal/observability"
	"github.com/voltmesh/gridadmin/internal/providers"
	"github.com/voltmesh/gridadmin/internal/ratelimit"
	"github.com/voltmesh/gridadmin/internal/role"
	"github.com/voltmesh/gridadmin/internal/scheduler"
	"github.com/voltmesh/gridadmin/internal/seed"
	"github.com/voltmesh/gridadmin/internal/server"
	"github.com/voltmesh/gridadmin/internal/ticket"
	"github.com/voltmesh/gridadmin/internal/ws"
	"github.com/voltmesh/gridadmin/pkg/db"
)

func main() {
	app := fx.New(
		// core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		auth.Module,
		migration.Module,
		seed.Module,

		// realtime, delivery and rate limiting
		ws.Module,
		ratelimit.Module,
		providers.Module,

		// domain services
		consumer.Module,
		meter.Module,
		account.Module,
		alert.Module,
		role.Module,
		ticket.Module,
		notification.Module,
		billingstats.Module,

		// background jobs and the HTTP surface
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

// newSnowflakeNode builds the process-wide ID generator. NODE_ID
// distinguishes instances behind a load balancer; a single instance can run
// with the default.
func newSnowflakeNode() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("NODE_ID"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = v
		}
	}
	return snowflake.NewNode(nodeID)
}
