package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Serial  string
	DTRName string
	Status  string
	Page    pagination.Page
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, meter *Meter) error
	Update(ctx context.Context, db *gorm.DB, meter *Meter) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Meter, error)
	FindBySerial(ctx context.Context, db *gorm.DB, serial string) (*Meter, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Meter, int64, error)
	InsertReading(ctx context.Context, db *gorm.DB, reading *MeterReading) error
}
