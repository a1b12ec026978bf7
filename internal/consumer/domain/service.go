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
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	ConsumerNumber string `json:"consumerNumber" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	LocationID     string `json:"locationId"`
}

type UpdateRequest struct {
	ID         string  `json:"id"`
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	LocationID *string `json:"locationId,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

type ListRequest struct {
	Search     string
	LocationID string
	Active     *bool
	Page       pagination.Page
}

type Response struct {
	ID             string    `json:"id"`
	ConsumerNumber string    `json:"consumerNumber"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	LocationID     string    `json:"locationId"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ListResponse struct {
	Consumers  []Response          `json:"consumers"`
	Pagination pagination.PageInfo `json:"pagination"`
}

var (
	ErrInvalidConsumerNumber = errors.New("invalid_consumer_number")
	ErrInvalidName           = errors.New("invalid_name")
	ErrInvalidID             = errors.New("invalid_id")
	ErrDuplicateNumber       = errors.New("duplicate_consumer_number")
	ErrNotFound              = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
