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
	GetByNumber(ctx context.Context, accountNumber string) (*Response, error)
	Recharge(ctx context.Context, req RechargeRequest) (*RechargeResponse, error)
	RecordConsumption(ctx context.Context, req ConsumptionRequest) (*ConsumptionResponse, error)
	Block(ctx context.Context, id string, reason string) (*Response, error)
	Unblock(ctx context.Context, id string) (*Response, error)
	ListRecharges(ctx context.Context, accountID string, page pagination.Page) (*RechargeListResponse, error)
	ListTransactions(ctx context.Context, accountID string, page pagination.Page) (*TransactionListResponse, error)
}

type CreateRequest struct {
	ConsumerID          string   `json:"consumerId" validate:"required"`
	InitialBalance      float64  `json:"initialBalance" validate:"gte=0"`
	LowBalanceThreshold *float64 `json:"lowBalanceThreshold,omitempty"`
	EmergencyThreshold  *float64 `json:"emergencyThreshold,omitempty"`
}

type ListRequest struct {
	AccountNumber  string
	ConsumerNumber string
	Blocked        *bool
	Page           pagination.Page
}

type RechargeRequest struct {
	AccountID     string  `json:"accountId" validate:"required"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	PaymentMethod string  `json:"paymentMethod"`
	Reference     string  `json:"reference"`
}

type ConsumptionRequest struct {
	AccountID      string  `json:"accountId" validate:"required"`
	ConsumptionKWh float64 `json:"consumptionKWh" validate:"gt=0"`
	Amount         float64 `json:"amount" validate:"gte=0"`
}

type Response struct {
	ID                  string    `json:"id"`
	AccountNumber       string    `json:"accountNumber"`
	ConsumerID          string    `json:"consumerId"`
	ConsumerNumber      string    `json:"consumerNumber,omitempty"`
	ConsumerName        string    `json:"consumerName,omitempty"`
	CurrentBalance      float64   `json:"currentBalance"`
	TotalRecharged      float64   `json:"totalRecharged"`
	TotalConsumed       float64   `json:"totalConsumed"`
	LowBalanceThreshold float64   `json:"lowBalanceThreshold"`
	EmergencyThreshold  float64   `json:"emergencyThreshold"`
	IsActive            bool      `json:"isActive"`
	IsBlocked           bool      `json:"isBlocked"`
	BlockReason         string    `json:"blockReason,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type ListResponse struct {
	Accounts   []Response          `json:"accounts"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type RechargeResponse struct {
	ID            string        `json:"id"`
	AccountID     string        `json:"accountId"`
	Amount        float64       `json:"amount"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	Reference     string        `json:"reference,omitempty"`
	BillNumber    string        `json:"billNumber"`
	NewBalance    float64       `json:"newBalance"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type RechargeListResponse struct {
	Recharges  []RechargeResponse  `json:"recharges"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type ConsumptionResponse struct {
	ID             string            `json:"id"`
	AccountID      string            `json:"accountId"`
	ConsumptionKWh float64           `json:"consumptionKWh"`
	Amount         float64           `json:"amount"`
	Status         TransactionStatus `json:"status"`
	NewBalance     float64           `json:"newBalance"`
	CreatedAt      time.Time         `json:"createdAt"`
}

type TransactionListResponse struct {
	Transactions []ConsumptionResponse `json:"transactions"`
	Pagination   pagination.PageInfo   `json:"pagination"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrConsumerMissing = errors.New("consumer_not_found")
	ErrDuplicate       = errors.New("duplicate_account")
	ErrNotFound        = errors.New("not_found")
	ErrBlocked         = errors.New("account_blocked")
	ErrInactive        = errors.New("account_inactive")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
