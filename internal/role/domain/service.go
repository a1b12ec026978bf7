package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	// Delete removes a role. It fails with ErrRoleInUse when any user still
	// references it; nothing is mutated on failure.
	Delete(ctx context.Context, id string) error
	// ReplacePermissions swaps the role's permission set for exactly the
	// given ids inside one transaction. An empty list clears the set.
	ReplacePermissions(ctx context.Context, id string, permissionIDs []string) (*Response, error)
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
}

type CreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Level       int      `json:"level"`
	AccessLevel string   `json:"accessLevel"`
	Permissions []string `json:"permissions"`
}

type UpdateRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Level       *int    `json:"level,omitempty"`
	AccessLevel *string `json:"accessLevel,omitempty"`
}

type ListRequest struct {
	Search     string
	LocationID string
	Page       pagination.Page
}

type Response struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Level       int                  `json:"level"`
	AccessLevel string               `json:"accessLevel,omitempty"`
	UserCount   int64                `json:"userCount"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type PermissionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ListResponse struct {
	Roles      []Response          `json:"roles"`
	Pagination pagination.PageInfo `json:"pagination"`
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNameConflict      = errors.New("role_name_conflict")
	ErrNotFound          = errors.New("not_found")
	ErrRoleInUse         = errors.New("role_in_use")
	ErrUnknownPermission = errors.New("unknown_permission")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
