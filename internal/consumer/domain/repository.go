package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search     string
	LocationID string
	Active     *bool
	Page       pagination.Page
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, consumer *Consumer) error
	Update(ctx context.Context, db *gorm.DB, consumer *Consumer) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Consumer, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Consumer, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Consumer, int64, error)
}
