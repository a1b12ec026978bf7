package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Consumer is a registered electricity consumer.
type Consumer struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	ConsumerNumber string       `json:"consumer_number" gorm:"type:text;not null;uniqueIndex:ux_consumers_number"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	Email          string       `json:"email" gorm:"type:text"`
	Phone          string       `json:"phone" gorm:"type:text"`
	Address        string       `json:"address" gorm:"type:text"`
	LocationID     string       `json:"location_id" gorm:"type:text;index"`
	Active         bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Consumer) TableName() string { return "consumers" }
