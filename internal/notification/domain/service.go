package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
)

// Kind identifies a meter or billing condition that warrants notifying the
// consumer.
type Kind string

const (
	KindZeroValueAlert        Kind = "ZERO_VALUE_ALERT"
	KindPowerFailureAlert     Kind = "POWER_FAILURE_ALERT"
	KindMeterAbnormalityAlert Kind = "METER_ABNORMALITY_ALERT"
	KindLowBalanceAlert       Kind = "LOW_BALANCE_ALERT"
	KindEmergencyLowAlert     Kind = "EMERGENCY_LOW_ALERT"
	KindAnnouncement          Kind = "ANNOUNCEMENT"
)

// KindPriority maps a kind to its delivery priority.
func KindPriority(kind Kind) Priority {
	switch kind {
	case KindZeroValueAlert, KindPowerFailureAlert, KindEmergencyLowAlert:
		return PriorityUrgent
	case KindMeterAbnormalityAlert, KindLowBalanceAlert:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Context carries the facts the dispatcher formats into the notification.
type Context struct {
	ConsumerID    string
	MeterSerial   string
	FeederName    string
	DTRName       string
	AccountNumber string
	Balance       float64
	Detail        string
}

// ChannelOutcome is one delivery attempt's result.
type ChannelOutcome string

const (
	OutcomeDelivered ChannelOutcome = "delivered"
	OutcomeFailed    ChannelOutcome = "failed"
	OutcomeSkipped   ChannelOutcome = "skipped"
)

// DispatchResult reports what happened after the notification row was
// persisted. The row exists in every case.
type DispatchResult struct {
	NotificationID string                     `json:"notificationId"`
	Recorded       bool                       `json:"recorded"`
	Delivered      bool                       `json:"delivered"`
	Channels       map[Channel]ChannelOutcome `json:"channels"`
}

// RecordedOnly reports that the row persisted but no channel was attempted.
func (r *DispatchResult) RecordedOnly() bool {
	return r.Recorded && len(r.Channels) == 0
}

// DeliveryFailed reports that at least one attempted channel failed.
func (r *DispatchResult) DeliveryFailed() bool {
	for _, outcome := range r.Channels {
		if outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

type Dispatcher interface {
	// Raise persists the notification and then attempts best-effort
	// delivery over push, email and SMS. Delivery failure never removes
	// the row.
	Raise(ctx context.Context, kind Kind, nctx Context) (*DispatchResult, error)
	Announce(ctx context.Context, req AnnounceRequest) (*DispatchResult, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	GetByID(ctx context.Context, id string) (*Response, error)
}

type AnnounceRequest struct {
	Title   string   `json:"title" validate:"required"`
	Message string   `json:"message" validate:"required"`
	Roles   []string `json:"roles"`
}

type ListRequest struct {
	Type     string
	Status   string
	Priority string
	Page     pagination.Page
}

type Response struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Priority    Priority   `json:"priority"`
	Channels    []Channel  `json:"channels"`
	Status      Status     `json:"status"`
	ConsumerID  string     `json:"consumerId,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ListResponse struct {
	Notifications []Response          `json:"notifications"`
	Pagination    pagination.PageInfo `json:"pagination"`
}

var (
	ErrInvalidKind  = errors.New("invalid_kind")
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidInput = errors.New("invalid_input")
	ErrNotFound     = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
