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
	UpdateStatus(ctx context.Context, id string, status string) (*Response, error)
	// Escalate marks the ticket escalated, raises its priority to URGENT and
	// notifies the assignee and the admin room.
	Escalate(ctx context.Context, id string, reason string) (*Response, error)
}

type CreateRequest struct {
	ConsumerID  string `json:"consumerId"`
	MeterID     string `json:"meterId"`
	Category    string `json:"category"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assigneeId"`
}

type UpdateRequest struct {
	ID          string  `json:"id"`
	Category    *string `json:"category,omitempty"`
	Subject     *string `json:"subject,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	AssigneeID  *string `json:"assigneeId,omitempty"`
}

type ListRequest struct {
	Status     string
	Priority   string
	Category   string
	AssigneeID string
	Search     string
	Page       pagination.Page
}

type Response struct {
	ID           string         `json:"id"`
	TicketNumber string         `json:"ticketNumber"`
	ConsumerID   string         `json:"consumerId,omitempty"`
	MeterID      string         `json:"meterId,omitempty"`
	Category     string         `json:"category,omitempty"`
	Subject      string         `json:"subject"`
	Description  string         `json:"description,omitempty"`
	Priority     TicketPriority `json:"priority"`
	Status       TicketStatus   `json:"status"`
	AssigneeID   string         `json:"assigneeId,omitempty"`
	Escalated    bool           `json:"escalated"`
	EscalatedAt  *time.Time     `json:"escalatedAt,omitempty"`
	ResolvedAt   *time.Time     `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type ListResponse struct {
	Tickets    []Response          `json:"tickets"`
	Pagination pagination.PageInfo `json:"pagination"`
}

var (
	ErrInvalidSubject    = errors.New("invalid_subject")
	ErrInvalidPriority   = errors.New("invalid_priority")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrAlreadyEscalated  = errors.New("already_escalated")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}

func ParseStatus(value string) (TicketStatus, error) {
	switch TicketStatus(value) {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return TicketStatus(value), nil
	default:
		return "", ErrInvalidStatus
	}
}

func ParsePriority(value string) (TicketPriority, error) {
	switch TicketPriority(value) {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return TicketPriority(value), nil
	default:
		return "", ErrInvalidPriority
	}
}
