package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is an operator role. Names are unique and compared case-sensitively:
// "Admin" and "admin" are distinct roles.
type Role struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null;uniqueIndex:ux_roles_name"`
	Description string       `json:"description" gorm:"type:text"`
	Level       int          `json:"level" gorm:"not null;default:0"`
	AccessLevel string       `json:"access_level" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Role) TableName() string { return "roles" }

// Permission is reference data describing one grantable capability.
type Permission struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null;uniqueIndex:ux_permissions_name"`
	Description string       `json:"description" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Permission) TableName() string { return "permissions" }

// RolePermission links a role to a granted permission.
type RolePermission struct {
	RoleID       snowflake.ID `json:"role_id" gorm:"primaryKey"`
	PermissionID snowflake.ID `json:"permission_id" gorm:"primaryKey"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RolePermission) TableName() string { return "role_permissions" }

// User is the minimal operator record: enough to enforce the role-in-use
// delete guard and location-scoped role listing.
type User struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	Username   string       `json:"username" gorm:"type:text;not null;uniqueIndex:ux_users_username"`
	Email      string       `json:"email" gorm:"type:text"`
	RoleID     snowflake.ID `json:"role_id" gorm:"index"`
	LocationID string       `json:"location_id" gorm:"type:text;index"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }
