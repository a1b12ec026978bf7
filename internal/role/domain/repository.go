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
	Page       pagination.Page
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, role *Role) error
	Update(ctx context.Context, db *gorm.DB, role *Role) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Role, error)
	// FindByName matches the name case-sensitively.
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Role, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Role, int64, error)

	CountUsers(ctx context.Context, db *gorm.DB, roleID snowflake.ID) (int64, error)
	FindPermissions(ctx context.Context, db *gorm.DB, roleID snowflake.ID) ([]Permission, error)
	FindPermissionsByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Permission, error)
	AllPermissions(ctx context.Context, db *gorm.DB) ([]Permission, error)
	DeletePermissionLinks(ctx context.Context, db *gorm.DB, roleID snowflake.ID) error
	InsertPermissionLinks(ctx context.Context, db *gorm.DB, roleID snowflake.ID, permissionIDs []snowflake.ID) error
}
