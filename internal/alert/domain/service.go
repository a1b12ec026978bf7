package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
)

type Service interface {
	// Raise records an alert. A still-unresolved alert of the same type for
	// the same account or meter is reused instead of inserting a duplicate.
	Raise(ctx context.Context, req RaiseRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Resolve(ctx context.Context, id string) (*Response, error)
}

type RaiseRequest struct {
	Type      string `json:"type" validate:"required"`
	Severity  string `json:"severity"`
	AccountID string `json:"accountId"`
	MeterID   string `json:"meterId"`
	Message   string `json:"message"`
}

type ListRequest struct {
	Type     string
	Resolved *bool
	Page     pagination.Page
}

type Response struct {
	ID         string        `json:"id"`
	Type       AlertType     `json:"type"`
	Severity   AlertSeverity `json:"severity"`
	AccountID  string        `json:"accountId,omitempty"`
	MeterID    string        `json:"meterId,omitempty"`
	Message    string        `json:"message"`
	Resolved   bool          `json:"resolved"`
	ResolvedAt *time.Time    `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

type ListResponse struct {
	Alerts     []Response          `json:"alerts"`
	Pagination pagination.PageInfo `json:"pagination"`
}

var (
	ErrInvalidType = errors.New("invalid_alert_type")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}

func ParseType(value string) (AlertType, error) {
	switch AlertType(value) {
	case AlertTypeLowBalance, AlertTypeEmergencyLow, AlertTypeZeroValue,
		AlertTypePowerFailure, AlertTypeMeterAbnormality:
		return AlertType(value), nil
	default:
		return "", ErrInvalidType
	}
}

// DefaultSeverity maps an alert type to its severity when the caller does not
// pick one.
func DefaultSeverity(t AlertType) AlertSeverity {
	switch t {
	case AlertTypeEmergencyLow, AlertTypePowerFailure:
		return AlertSeverityCritical
	case AlertTypeLowBalance, AlertTypeMeterAbnormality:
		return AlertSeverityWarning
	default:
		return AlertSeverityInfo
	}
}
