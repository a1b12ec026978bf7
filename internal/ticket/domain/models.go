package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is a consumer support case.
type Ticket struct {
	ID           snowflake.ID   `json:"id" gorm:"primaryKey"`
	TicketNumber string         `json:"ticket_number" gorm:"type:text;not null;uniqueIndex:ux_tickets_number"`
	ConsumerID   snowflake.ID   `json:"consumer_id" gorm:"index"`
	MeterID      snowflake.ID   `json:"meter_id" gorm:"index"`
	Category     string         `json:"category" gorm:"type:text"`
	Subject      string         `json:"subject" gorm:"type:text;not null"`
	Description  string         `json:"description" gorm:"type:text"`
	Priority     TicketPriority `json:"priority" gorm:"type:text;not null;default:MEDIUM"`
	Status       TicketStatus   `json:"status" gorm:"type:text;not null;default:OPEN;index"`
	AssigneeID   snowflake.ID   `json:"assignee_id" gorm:"index"`
	Escalated    bool           `json:"escalated" gorm:"not null;default:false"`
	EscalatedAt  *time.Time     `json:"escalated_at"`
	ResolvedAt   *time.Time     `json:"resolved_at"`
	CreatedAt    time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Ticket) TableName() string { return "tickets" }

// CanTransition reports whether a status move is legal. Closed tickets are
// terminal; resolved tickets can be reopened.
func CanTransition(from, to TicketStatus) bool {
	switch from {
	case TicketStatusOpen:
		return to == TicketStatusInProgress || to == TicketStatusResolved || to == TicketStatusClosed
	case TicketStatusInProgress:
		return to == TicketStatusResolved || to == TicketStatusClosed
	case TicketStatusResolved:
		return to == TicketStatusClosed || to == TicketStatusInProgress
	default:
		return false
	}
}
