package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/voltmesh/gridadmin/internal/account/domain"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() accountdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *accountdomain.PrepaidAccount) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *accountdomain.PrepaidAccount) error {
	return db.WithContext(ctx).Exec(
		`UPDATE prepaid_accounts
		 SET current_balance = ?, total_recharged = ?, total_consumed = ?,
		     low_balance_threshold = ?, emergency_threshold = ?,
		     is_active = ?, is_blocked = ?, block_reason = ?, updated_at = ?
		 WHERE id = ?`,
		account.CurrentBalance,
		account.TotalRecharged,
		account.TotalConsumed,
		account.LowBalanceThreshold,
		account.EmergencyThreshold,
		account.IsActive,
		account.IsBlocked,
		account.BlockReason,
		account.UpdatedAt,
		account.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*accountdomain.PrepaidAccount, error) {
	var account accountdomain.PrepaidAccount
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM prepaid_accounts WHERE id = ?`, id,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, accountNumber string) (*accountdomain.PrepaidAccount, error) {
	var account accountdomain.PrepaidAccount
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM prepaid_accounts WHERE account_number = ?`, accountNumber,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) FindByConsumer(ctx context.Context, db *gorm.DB, consumerID snowflake.ID) (*accountdomain.PrepaidAccount, error) {
	var account accountdomain.PrepaidAccount
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM prepaid_accounts WHERE consumer_id = ?`, consumerID,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter accountdomain.ListFilter) ([]accountdomain.AccountRow, int64, error) {
	query := db.WithContext(ctx).
		Table("prepaid_accounts").
		Joins("LEFT JOIN consumers ON consumers.id = prepaid_accounts.consumer_id")

	if number := strings.TrimSpace(filter.AccountNumber); number != "" {
		query = query.Where("LOWER(prepaid_accounts.account_number) LIKE ?", "%"+strings.ToLower(number)+"%")
	}
	if number := strings.TrimSpace(filter.ConsumerNumber); number != "" {
		query = query.Where("LOWER(consumers.consumer_number) LIKE ?", "%"+strings.ToLower(number)+"%")
	}
	if filter.Blocked != nil {
		query = query.Where("prepaid_accounts.is_blocked = ?", *filter.Blocked)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []accountdomain.AccountRow
	err := query.
		Select("prepaid_accounts.*, consumers.consumer_number AS consumer_number, consumers.name AS consumer_name").
		Order("prepaid_accounts.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repo) InsertRecharge(ctx context.Context, db *gorm.DB, recharge *accountdomain.Recharge) error {
	return db.WithContext(ctx).Create(recharge).Error
}

func (r *repo) ListRecharges(ctx context.Context, db *gorm.DB, accountID snowflake.ID, page pagination.Page) ([]accountdomain.Recharge, int64, error) {
	query := db.WithContext(ctx).
		Model(&accountdomain.Recharge{}).
		Where("account_id = ?", accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var recharges []accountdomain.Recharge
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&recharges).Error
	if err != nil {
		return nil, 0, err
	}
	return recharges, total, nil
}

func (r *repo) InsertTransaction(ctx context.Context, db *gorm.DB, txn *accountdomain.ConsumptionTransaction) error {
	return db.WithContext(ctx).Create(txn).Error
}

func (r *repo) ListTransactions(ctx context.Context, db *gorm.DB, accountID snowflake.ID, page pagination.Page) ([]accountdomain.ConsumptionTransaction, int64, error) {
	query := db.WithContext(ctx).
		Model(&accountdomain.ConsumptionTransaction{}).
		Where("account_id = ?", accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var txns []accountdomain.ConsumptionTransaction
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
