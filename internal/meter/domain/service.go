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
	GetBySerial(ctx context.Context, serial string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	RecordReading(ctx context.Context, req ReadingRequest) (*ReadingResponse, error)
}

type CreateRequest struct {
	SerialNumber string `json:"serialNumber" validate:"required"`
	ConsumerID   string `json:"consumerId"`
	DTRName      string `json:"dtrName"`
	FeederName   string `json:"feederName"`
	MeterType    string `json:"meterType" validate:"required"`
}

type UpdateRequest struct {
	ID         string  `json:"id"`
	ConsumerID *string `json:"consumerId,omitempty"`
	DTRName    *string `json:"dtrName,omitempty"`
	FeederName *string `json:"feederName,omitempty"`
	MeterType  *string `json:"meterType,omitempty"`
	Status     *string `json:"status,omitempty"`
}

type ListRequest struct {
	Serial  string
	DTRName string
	Status  string
	Page    pagination.Page
}

type ReadingRequest struct {
	MeterID    string     `json:"meterId"`
	ReadingKWh float64    `json:"readingKWh" validate:"gte=0"`
	Voltage    float64    `json:"voltage"`
	PowerKW    float64    `json:"powerKW"`
	RecordedAt *time.Time `json:"recordedAt,omitempty"`
}

type Response struct {
	ID            string      `json:"id"`
	SerialNumber  string      `json:"serialNumber"`
	ConsumerID    string      `json:"consumerId,omitempty"`
	DTRName       string      `json:"dtrName"`
	FeederName    string      `json:"feederName"`
	MeterType     string      `json:"meterType"`
	Status        MeterStatus `json:"status"`
	LastReadingKW float64     `json:"lastReadingKWh"`
	LastReadingAt *time.Time  `json:"lastReadingAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type ReadingResponse struct {
	ID         string    `json:"id"`
	MeterID    string    `json:"meterId"`
	ReadingKWh float64   `json:"readingKWh"`
	Voltage    float64   `json:"voltage"`
	PowerKW    float64   `json:"powerKW"`
	RecordedAt time.Time `json:"recordedAt"`
}

type ListResponse struct {
	Meters     []Response          `json:"meters"`
	Pagination pagination.PageInfo `json:"pagination"`
}

var (
	ErrInvalidSerial    = errors.New("invalid_serial_number")
	ErrInvalidMeterType = errors.New("invalid_meter_type")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidReading   = errors.New("invalid_reading")
	ErrInvalidID        = errors.New("invalid_id")
	ErrDuplicateSerial  = errors.New("duplicate_serial_number")
	ErrNotFound         = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}

func ParseStatus(value string) (MeterStatus, error) {
	switch MeterStatus(value) {
	case MeterStatusActive, MeterStatusInactive, MeterStatusDisconnected, MeterStatusFaulty:
		return MeterStatus(value), nil
	default:
		return "", ErrInvalidStatus
	}
}
