package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status     string
	Priority   string
	Category   string
	AssigneeID snowflake.ID
	Search     string
	Page       pagination.Page
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ticket *Ticket) error
	Update(ctx context.Context, db *gorm.DB, ticket *Ticket) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Ticket, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Ticket, int64, error)
}
