package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

type Channel string

const (
	ChannelPush  Channel = "PUSH"
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// Notification is the persisted intent. The row is written PENDING before
// any delivery attempt, and it stands regardless of delivery outcome.
type Notification struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	Type           string       `json:"type" gorm:"type:text;not null;index"`
	Title          string       `json:"title" gorm:"type:text;not null"`
	Message        string       `json:"message" gorm:"type:text"`
	Priority       Priority     `json:"priority" gorm:"type:text;not null"`
	Channels       string       `json:"channels" gorm:"type:text"`
	Status         Status       `json:"status" gorm:"type:text;not null;index"`
	ConsumerID     snowflake.ID `json:"consumer_id" gorm:"index"`
	IdempotencyKey string       `json:"idempotency_key" gorm:"type:text;index"`
	DeliveredAt    *time.Time   `json:"delivered_at"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }
