// Package migration brings the schema up to date at startup. Every gorm
// model the application persists is registered here; adding a table means
// adding its model to the list below.
package migration

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/voltmesh/gridadmin/internal/account/domain"
	alertdomain "github.com/voltmesh/gridadmin/internal/alert/domain"
	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
	meterdomain "github.com/voltmesh/gridadmin/internal/meter/domain"
	notificationdomain "github.com/voltmesh/gridadmin/internal/notification/domain"
	roledomain "github.com/voltmesh/gridadmin/internal/role/domain"
	ticketdomain "github.com/voltmesh/gridadmin/internal/ticket/domain"
)

// models lists every table in dependency order. Parents before children so
// foreign keys resolve on databases that enforce them.
func models() []any {
	return []any{
		&roledomain.Role{},
		&roledomain.Permission{},
		&roledomain.RolePermission{},
		&roledomain.User{},
		&consumerdomain.Consumer{},
		&meterdomain.Meter{},
		&meterdomain.MeterReading{},
		&accountdomain.PrepaidAccount{},
		&accountdomain.Recharge{},
		&accountdomain.ConsumptionTransaction{},
		&alertdomain.Alert{},
		&notificationdomain.Notification{},
		&ticketdomain.Ticket{},
	}
}

// Run applies AutoMigrate for all registered models.
func Run(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(models()...); err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}
	log.Info("migration complete", zap.Int("models", len(models())))
	return nil
}

// Module runs migrations during application start, before the HTTP server
// begins accepting requests.
var Module = fx.Module("migration",
	fx.Invoke(func(lc fx.Lifecycle, db *gorm.DB, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				_ = ctx
				return Run(db, log)
			},
		})
	}),
)
