package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type AlertType string

const (
	AlertTypeLowBalance       AlertType = "LOW_BALANCE"
	AlertTypeEmergencyLow     AlertType = "EMERGENCY_LOW"
	AlertTypeZeroValue        AlertType = "ZERO_VALUE"
	AlertTypePowerFailure     AlertType = "POWER_FAILURE"
	AlertTypeMeterAbnormality AlertType = "METER_ABNORMALITY"
)

type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "INFO"
	AlertSeverityWarning  AlertSeverity = "WARNING"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

// Alert is an operational event raised against an account or a meter. Alerts
// are append-only; resolution only flips the resolved flag.
type Alert struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	Type       AlertType     `json:"type" gorm:"type:text;not null;index"`
	Severity   AlertSeverity `json:"severity" gorm:"type:text;not null"`
	AccountID  snowflake.ID  `json:"account_id" gorm:"index"`
	MeterID    snowflake.ID  `json:"meter_id" gorm:"index"`
	Message    string        `json:"message" gorm:"type:text"`
	Resolved   bool          `json:"resolved" gorm:"not null;default:false;index"`
	ResolvedAt *time.Time    `json:"resolved_at"`
	CreatedAt  time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName sets the database table name.
func (Alert) TableName() string { return "alerts" }
