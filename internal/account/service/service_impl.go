package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/voltmesh/gridadmin/internal/account/domain"
	alertdomain "github.com/voltmesh/gridadmin/internal/alert/domain"
	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
	"github.com/voltmesh/gridadmin/internal/numbering"
	"github.com/voltmesh/gridadmin/pkg/db"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	ConsumerRepo consumerdomain.Repository
	Alerts       alertdomain.Service `optional:"true"`
}

type accountService struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	consumerRepo consumerdomain.Repository
	alerts       alertdomain.Service
}

func New(p Params) domain.Service {
	return &accountService{
		db:           p.DB,
		log:          p.Log.Named("account.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		consumerRepo: p.ConsumerRepo,
		alerts:       p.Alerts,
	}
}

// Balance adjustments go through decimal so repeated recharges and debits
// cannot accumulate binary float drift.
func addMoney(a, b float64) float64 {
	v, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).Float64()
	return v
}

func subMoney(a, b float64) float64 {
	v, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).Float64()
	return v
}

func (s *accountService) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	consumerID, err := domain.ParseID(req.ConsumerID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if req.InitialBalance < 0 {
		return nil, domain.ErrInvalidAmount
	}

	consumer, err := s.consumerRepo.FindByID(ctx, s.db, consumerID)
	if err != nil {
		return nil, err
	}
	if consumer == nil {
		return nil, domain.ErrConsumerMissing
	}

	existing, err := s.repo.FindByConsumer(ctx, s.db, consumerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	lowThreshold := domain.DefaultLowBalanceThreshold
	if req.LowBalanceThreshold != nil && *req.LowBalanceThreshold > 0 {
		lowThreshold = *req.LowBalanceThreshold
	}
	emergencyThreshold := domain.DefaultEmergencyThreshold
	if req.EmergencyThreshold != nil && *req.EmergencyThreshold > 0 {
		emergencyThreshold = *req.EmergencyThreshold
	}

	id := s.genID.Generate()
	account := &domain.PrepaidAccount{
		ID:                  id,
		AccountNumber:       numbering.AccountNumber(consumer.ConsumerNumber, id.Int64()),
		ConsumerID:          consumerID,
		CurrentBalance:      req.InitialBalance,
		TotalRecharged:      req.InitialBalance,
		LowBalanceThreshold: lowThreshold,
		EmergencyThreshold:  emergencyThreshold,
		IsActive:            true,
	}

	if err := s.repo.Insert(ctx, s.db, account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicate
		}
		s.log.Error("insert prepaid account", zap.Error(err))
		return nil, err
	}

	resp := toResponse(account)
	resp.ConsumerNumber = consumer.ConsumerNumber
	resp.ConsumerName = consumer.Name
	return resp, nil
}

func (s *accountService) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page := req.Page.Normalize()

	rows, total, err := s.repo.List(ctx, s.db, domain.ListFilter{
		AccountNumber:  req.AccountNumber,
		ConsumerNumber: req.ConsumerNumber,
		Blocked:        req.Blocked,
		Page:           page,
	})
	if err != nil {
		s.log.Error("list prepaid accounts", zap.Error(err))
		return nil, err
	}

	items := make([]domain.Response, 0, len(rows))
	for i := range rows {
		resp := toResponse(&rows[i].PrepaidAccount)
		resp.ConsumerNumber = rows[i].ConsumerNumber
		resp.ConsumerName = rows[i].ConsumerName
		items = append(items, *resp)
	}

	return &domain.ListResponse{
		Accounts:   items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *accountService) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	accountID, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	account, err := s.repo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}

	return toResponse(account), nil
}

func (s *accountService) GetByNumber(ctx context.Context, accountNumber string) (*domain.Response, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, domain.ErrInvalidID
	}

	account, err := s.repo.FindByNumber(ctx, s.db, accountNumber)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}

	return toResponse(account), nil
}

// Recharge credits the account. The recharge row and the balance adjustment
// commit in one transaction.
func (s *accountService) Recharge(ctx context.Context, req domain.RechargeRequest) (*domain.RechargeResponse, error) {
	accountID, err := domain.ParseID(req.AccountID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	rechargeID := s.genID.Generate()
	recharge := &domain.Recharge{
		ID:            rechargeID,
		AccountID:     accountID,
		Amount:        req.Amount,
		PaymentStatus: domain.PaymentStatusSuccess,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Reference:     strings.TrimSpace(req.Reference),
		BillNumber:    numbering.BillNumber(now, rechargeID.Int64()),
		CreatedAt:     now,
	}

	var newBalance float64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.repo.FindByID(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrNotFound
		}
		if !account.IsActive {
			return domain.ErrInactive
		}

		if err := s.repo.InsertRecharge(ctx, tx, recharge); err != nil {
			return err
		}

		account.CurrentBalance = addMoney(account.CurrentBalance, req.Amount)
		account.TotalRecharged = addMoney(account.TotalRecharged, req.Amount)
		account.UpdatedAt = now
		newBalance = account.CurrentBalance
		return s.repo.Update(ctx, tx, account)
	})
	if err != nil {
		if err != domain.ErrNotFound && err != domain.ErrInactive {
			s.log.Error("recharge account", zap.Error(err))
		}
		return nil, err
	}

	return &domain.RechargeResponse{
		ID:            recharge.ID.String(),
		AccountID:     accountID.String(),
		Amount:        recharge.Amount,
		PaymentStatus: recharge.PaymentStatus,
		PaymentMethod: recharge.PaymentMethod,
		Reference:     recharge.Reference,
		BillNumber:    recharge.BillNumber,
		NewBalance:    newBalance,
		CreatedAt:     recharge.CreatedAt,
	}, nil
}

// RecordConsumption debits the account. The transaction row and the balance
// adjustment commit together; threshold alerts are raised after commit and
// never fail the debit.
func (s *accountService) RecordConsumption(ctx context.Context, req domain.ConsumptionRequest) (*domain.ConsumptionResponse, error) {
	accountID, err := domain.ParseID(req.AccountID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if req.ConsumptionKWh <= 0 || req.Amount < 0 {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	txn := &domain.ConsumptionTransaction{
		ID:              s.genID.Generate(),
		AccountID:       accountID,
		TransactionType: domain.TransactionTypeConsumption,
		Status:          domain.TransactionStatusCompleted,
		ConsumptionKWh:  req.ConsumptionKWh,
		Amount:          req.Amount,
		CreatedAt:       now,
	}

	var after domain.PrepaidAccount
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.repo.FindByID(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrNotFound
		}
		if account.IsBlocked {
			return domain.ErrBlocked
		}
		if !account.IsActive {
			return domain.ErrInactive
		}

		if err := s.repo.InsertTransaction(ctx, tx, txn); err != nil {
			return err
		}

		account.CurrentBalance = subMoney(account.CurrentBalance, req.Amount)
		account.TotalConsumed = addMoney(account.TotalConsumed, req.Amount)
		account.UpdatedAt = now
		after = *account
		return s.repo.Update(ctx, tx, account)
	})
	if err != nil {
		if err != domain.ErrNotFound && err != domain.ErrBlocked && err != domain.ErrInactive {
			s.log.Error("record consumption", zap.Error(err))
		}
		return nil, err
	}

	s.raiseThresholdAlerts(ctx, &after)

	return &domain.ConsumptionResponse{
		ID:             txn.ID.String(),
		AccountID:      accountID.String(),
		ConsumptionKWh: txn.ConsumptionKWh,
		Amount:         txn.Amount,
		Status:         txn.Status,
		NewBalance:     after.CurrentBalance,
		CreatedAt:      txn.CreatedAt,
	}, nil
}

func (s *accountService) raiseThresholdAlerts(ctx context.Context, account *domain.PrepaidAccount) {
	if s.alerts == nil {
		return
	}

	var (
		alertType alertdomain.AlertType
		message   string
	)
	switch {
	case account.CurrentBalance <= account.EmergencyThreshold:
		alertType = alertdomain.AlertTypeEmergencyLow
		message = fmt.Sprintf("account %s balance %.2f at or below emergency threshold %.2f",
			account.AccountNumber, account.CurrentBalance, account.EmergencyThreshold)
	case account.CurrentBalance < account.LowBalanceThreshold:
		alertType = alertdomain.AlertTypeLowBalance
		message = fmt.Sprintf("account %s balance %.2f below threshold %.2f",
			account.AccountNumber, account.CurrentBalance, account.LowBalanceThreshold)
	default:
		return
	}

	if _, err := s.alerts.Raise(ctx, alertdomain.RaiseRequest{
		Type:      string(alertType),
		AccountID: account.ID.String(),
		Message:   message,
	}); err != nil {
		s.log.Warn("raise balance alert",
			zap.String("account_id", account.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *accountService) Block(ctx context.Context, id string, reason string) (*domain.Response, error) {
	return s.setBlocked(ctx, id, true, strings.TrimSpace(reason))
}

func (s *accountService) Unblock(ctx context.Context, id string) (*domain.Response, error) {
	return s.setBlocked(ctx, id, false, "")
}

func (s *accountService) setBlocked(ctx context.Context, id string, blocked bool, reason string) (*domain.Response, error) {
	accountID, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	account, err := s.repo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}

	account.IsBlocked = blocked
	account.BlockReason = reason
	account.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, account); err != nil {
		s.log.Error("update account block state", zap.Error(err))
		return nil, err
	}

	return toResponse(account), nil
}

func (s *accountService) ListRecharges(ctx context.Context, accountID string, page pagination.Page) (*domain.RechargeListResponse, error) {
	id, err := domain.ParseID(accountID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	page = page.Normalize()
	recharges, total, err := s.repo.ListRecharges(ctx, s.db, id, page)
	if err != nil {
		s.log.Error("list recharges", zap.Error(err))
		return nil, err
	}

	items := make([]domain.RechargeResponse, 0, len(recharges))
	for i := range recharges {
		r := &recharges[i]
		items = append(items, domain.RechargeResponse{
			ID:            r.ID.String(),
			AccountID:     r.AccountID.String(),
			Amount:        r.Amount,
			PaymentStatus: r.PaymentStatus,
			PaymentMethod: r.PaymentMethod,
			Reference:     r.Reference,
			BillNumber:    r.BillNumber,
			CreatedAt:     r.CreatedAt,
		})
	}

	return &domain.RechargeListResponse{
		Recharges:  items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *accountService) ListTransactions(ctx context.Context, accountID string, page pagination.Page) (*domain.TransactionListResponse, error) {
	id, err := domain.ParseID(accountID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	page = page.Normalize()
	txns, total, err := s.repo.ListTransactions(ctx, s.db, id, page)
	if err != nil {
		s.log.Error("list consumption transactions", zap.Error(err))
		return nil, err
	}

	items := make([]domain.ConsumptionResponse, 0, len(txns))
	for i := range txns {
		t := &txns[i]
		items = append(items, domain.ConsumptionResponse{
			ID:             t.ID.String(),
			AccountID:      t.AccountID.String(),
			ConsumptionKWh: t.ConsumptionKWh,
			Amount:         t.Amount,
			Status:         t.Status,
			CreatedAt:      t.CreatedAt,
		})
	}

	return &domain.TransactionListResponse{
		Transactions: items,
		Pagination:   pagination.BuildPageInfo(page, total),
	}, nil
}

func toResponse(account *domain.PrepaidAccount) *domain.Response {
	return &domain.Response{
		ID:                  account.ID.String(),
		AccountNumber:       account.AccountNumber,
		ConsumerID:          account.ConsumerID.String(),
		CurrentBalance:      account.CurrentBalance,
		TotalRecharged:      account.TotalRecharged,
		TotalConsumed:       account.TotalConsumed,
		LowBalanceThreshold: account.LowBalanceThreshold,
		EmergencyThreshold:  account.EmergencyThreshold,
		IsActive:            account.IsActive,
		IsBlocked:           account.IsBlocked,
		BlockReason:         account.BlockReason,
		CreatedAt:           account.CreatedAt,
		UpdatedAt:           account.UpdatedAt,
	}
}
