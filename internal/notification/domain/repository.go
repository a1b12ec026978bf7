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
	Status   string
	Priority string
	Page     pagination.Page
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, deliveredAt *time.Time) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Notification, int64, error)
}
