package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	AccountNumber  string
	ConsumerNumber string
	Blocked        *bool
	Page           pagination.Page
}

// AccountRow joins the account with its consumer's display fields.
type AccountRow struct {
	PrepaidAccount
	ConsumerNumber string `json:"consumer_number"`
	ConsumerName   string `json:"consumer_name"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *PrepaidAccount) error
	Update(ctx context.Context, db *gorm.DB, account *PrepaidAccount) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PrepaidAccount, error)
	FindByNumber(ctx context.Context, db *gorm.DB, accountNumber string) (*PrepaidAccount, error)
	FindByConsumer(ctx context.Context, db *gorm.DB, consumerID snowflake.ID) (*PrepaidAccount, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]AccountRow, int64, error)

	InsertRecharge(ctx context.Context, db *gorm.DB, recharge *Recharge) error
	ListRecharges(ctx context.Context, db *gorm.DB, accountID snowflake.ID, page pagination.Page) ([]Recharge, int64, error)

	InsertTransaction(ctx context.Context, db *gorm.DB, txn *ConsumptionTransaction) error
	ListTransactions(ctx context.Context, db *gorm.DB, accountID snowflake.ID, page pagination.Page) ([]ConsumptionTransaction, int64, error)
}
