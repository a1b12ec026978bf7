package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Type     string
	Resolved *bool
	Page     pagination.Page
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, alert *Alert) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Alert, error)
	FindOpen(ctx context.Context, db *gorm.DB, alertType AlertType, accountID, meterID snowflake.ID) (*Alert, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Alert, int64, error)
	MarkResolved(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	CountByTypeSince(ctx context.Context, db *gorm.DB, alertType AlertType, since, until time.Time) (int64, error)
}
