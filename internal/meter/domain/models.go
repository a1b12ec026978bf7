package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MeterStatus string

const (
	MeterStatusActive       MeterStatus = "ACTIVE"
	MeterStatusInactive     MeterStatus = "INACTIVE"
	MeterStatusDisconnected MeterStatus = "DISCONNECTED"
	MeterStatusFaulty       MeterStatus = "FAULTY"
)

// Meter is a physical energy meter installed at a consumer premise.
type Meter struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	SerialNumber  string       `json:"serial_number" gorm:"type:text;not null;uniqueIndex:ux_meters_serial"`
	ConsumerID    snowflake.ID `json:"consumer_id" gorm:"index"`
	DTRName       string       `json:"dtr_name" gorm:"column:dtr_name;type:text;index"`
	FeederName    string       `json:"feeder_name" gorm:"type:text"`
	MeterType     string       `json:"meter_type" gorm:"type:text;not null"`
	Status        MeterStatus  `json:"status" gorm:"type:text;not null;default:ACTIVE"`
	LastReadingKW float64      `json:"last_reading_kwh" gorm:"column:last_reading_kwh"`
	LastReadingAt *time.Time   `json:"last_reading_at"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Meter) TableName() string { return "meters" }

// MeterReading is a single ingested measurement.
type MeterReading struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	MeterID    snowflake.ID `json:"meter_id" gorm:"not null;index"`
	ReadingKWh float64      `json:"reading_kwh" gorm:"column:reading_kwh;not null"`
	Voltage    float64      `json:"voltage"`
	PowerKW    float64      `json:"power_kw" gorm:"column:power_kw"`
	RecordedAt time.Time    `json:"recorded_at" gorm:"not null;index"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MeterReading) TableName() string { return "meter_readings" }
