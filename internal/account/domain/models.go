package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// DefaultLowBalanceThreshold applies when an account has no explicit
	// threshold configured.
	DefaultLowBalanceThreshold = 100.0
	// DefaultEmergencyThreshold marks the point below which supply is at
	// immediate risk of disconnection.
	DefaultEmergencyThreshold = 20.0
)

// PrepaidAccount is the billing wallet attached to one consumer. The balance
// is a derived running value: each recharge or consumption adjusts it inside
// that operation's transaction, and a reconciliation sweep may correct drift.
type PrepaidAccount struct {
	ID                  snowflake.ID `json:"id" gorm:"primaryKey"`
	AccountNumber       string       `json:"account_number" gorm:"type:text;not null;uniqueIndex:ux_prepaid_accounts_number"`
	ConsumerID          snowflake.ID `json:"consumer_id" gorm:"not null;index"`
	CurrentBalance      float64      `json:"current_balance" gorm:"not null;default:0"`
	TotalRecharged      float64      `json:"total_recharged" gorm:"not null;default:0"`
	TotalConsumed       float64      `json:"total_consumed" gorm:"not null;default:0"`
	LowBalanceThreshold float64      `json:"low_balance_threshold" gorm:"not null;default:100"`
	EmergencyThreshold  float64      `json:"emergency_threshold" gorm:"not null;default:20"`
	IsActive            bool         `json:"is_active" gorm:"not null;default:true"`
	IsBlocked           bool         `json:"is_blocked" gorm:"not null;default:false"`
	BlockReason         string       `json:"block_reason" gorm:"type:text"`
	CreatedAt           time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PrepaidAccount) TableName() string { return "prepaid_accounts" }

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Recharge is one top-up attempt. Only SUCCESS recharges move the balance and
// count toward revenue statistics.
type Recharge struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	AccountID     snowflake.ID  `json:"account_id" gorm:"not null;index"`
	Amount        float64       `json:"amount" gorm:"not null"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:text;not null;index"`
	PaymentMethod string        `json:"payment_method" gorm:"type:text"`
	Reference     string        `json:"reference" gorm:"type:text"`
	BillNumber    string        `json:"bill_number" gorm:"type:text"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (Recharge) TableName() string { return "recharges" }

type TransactionType string

const (
	TransactionTypeConsumption TransactionType = "CONSUMPTION"
	TransactionTypeAdjustment  TransactionType = "ADJUSTMENT"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// ConsumptionTransaction records energy drawn against the prepaid balance.
// Only COMPLETED CONSUMPTION rows count toward consumption statistics.
type ConsumptionTransaction struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	AccountID       snowflake.ID      `json:"account_id" gorm:"not null;index"`
	TransactionType TransactionType   `json:"transaction_type" gorm:"type:text;not null;index"`
	Status          TransactionStatus `json:"status" gorm:"type:text;not null;index"`
	ConsumptionKWh  float64           `json:"consumption_kwh" gorm:"column:consumption_kwh;not null"`
	Amount          float64           `json:"amount" gorm:"not null"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (ConsumptionTransaction) TableName() string { return "consumption_transactions" }
