package billingstats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/voltmesh/gridadmin/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WindowStats aggregates billing activity inside one time window. Only
// SUCCESS recharges and COMPLETED consumption transactions count.
type WindowStats struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	RechargeAmount   float64 `json:"rechargeAmount"`
	RechargeCount    int64   `json:"rechargeCount"`
	RechargeAccounts int64   `json:"rechargeAccounts"`

	ConsumptionKWh      float64 `json:"consumptionKWh"`
	ConsumptionAmount   float64 `json:"consumptionAmount"`
	ConsumptionCount    int64   `json:"consumptionCount"`
	ConsumptionAccounts int64   `json:"consumptionAccounts"`

	AlertCount          int64 `json:"alertCount"`
	AutoDisconnectCount int64 `json:"autoDisconnectCount"`
}

// AccountsSnapshot is the unwindowed view over every prepaid account.
type AccountsSnapshot struct {
	TotalAccounts   int64   `json:"totalAccounts"`
	ActiveAccounts  int64   `json:"activeAccounts"`
	BlockedAccounts int64   `json:"blockedAccounts"`
	TotalBalance    float64 `json:"totalBalance"`
	LowBalanceCount int64   `json:"lowBalanceCount"`
	TotalRecharged  float64 `json:"totalRecharged"`
	TotalConsumed   float64 `json:"totalConsumed"`
	RemainingCredit float64 `json:"remainingCredit"`
}

type Report struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Today       WindowStats      `json:"today"`
	Yesterday   WindowStats      `json:"yesterday"`
	ThisMonth   WindowStats      `json:"thisMonth"`
	LastMonth   WindowStats      `json:"lastMonth"`
	Accounts    AccountsSnapshot `json:"accounts"`
}

type Service interface {
	Compute(ctx context.Context) (*Report, error)
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type statsService struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) Service {
	return &statsService{
		db:    p.DB,
		log:   p.Log.Named("billingstats.service"),
		clock: p.Clock,
	}
}

var Module = fx.Module("billingstats.service",
	fx.Provide(New),
)

// Compute aggregates the dashboard report. Daily windows are server-local
// calendar days and monthly windows are real calendar months, so adjacent
// windows never overlap.
func (s *statsService) Compute(ctx context.Context) (*Report, error) {
	now := s.clock.Now()

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	report := &Report{GeneratedAt: now.UTC()}

	windows := []struct {
		dst      *WindowStats
		from, to time.Time
	}{
		{&report.Today, todayStart, todayEnd},
		{&report.Yesterday, yesterdayStart, todayStart},
		{&report.ThisMonth, monthStart, monthEnd},
		{&report.LastMonth, lastMonthStart, monthStart},
	}
	for _, w := range windows {
		if err := s.computeWindow(ctx, w.dst, w.from, w.to); err != nil {
			s.log.Error("compute stats window", zap.Error(err))
			return nil, err
		}
	}

	if err := s.computeSnapshot(ctx, &report.Accounts); err != nil {
		s.log.Error("compute account snapshot", zap.Error(err))
		return nil, err
	}

	return report, nil
}

type rechargeRow struct {
	Total    float64
	Count    int64
	Accounts int64
}

type consumptionRow struct {
	KWh      float64
	Total    float64
	Count    int64
	Accounts int64
}

func (s *statsService) computeWindow(ctx context.Context, dst *WindowStats, from, to time.Time) error {
	dst.From = from
	dst.To = to

	var recharge rechargeRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total,
		        COUNT(*) AS count,
		        COUNT(DISTINCT account_id) AS accounts
		 FROM recharges
		 WHERE payment_status = 'SUCCESS' AND created_at >= ? AND created_at < ?`,
		from, to,
	).Scan(&recharge).Error
	if err != nil {
		return err
	}
	dst.RechargeAmount = round2(recharge.Total)
	dst.RechargeCount = recharge.Count
	dst.RechargeAccounts = recharge.Accounts

	var consumption consumptionRow
	err = s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(consumption_kwh), 0) AS k_wh,
		        COALESCE(SUM(amount), 0) AS total,
		        COUNT(*) AS count,
		        COUNT(DISTINCT account_id) AS accounts
		 FROM consumption_transactions
		 WHERE transaction_type = 'CONSUMPTION' AND status = 'COMPLETED'
		   AND created_at >= ? AND created_at < ?`,
		from, to,
	).Scan(&consumption).Error
	if err != nil {
		return err
	}
	dst.ConsumptionKWh = round2(consumption.KWh)
	dst.ConsumptionAmount = round2(consumption.Total)
	dst.ConsumptionCount = consumption.Count
	dst.ConsumptionAccounts = consumption.Accounts

	err = s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM alerts WHERE created_at >= ? AND created_at < ?`,
		from, to,
	).Scan(&dst.AlertCount).Error
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM alerts
		 WHERE type IN ('LOW_BALANCE', 'EMERGENCY_LOW')
		   AND created_at >= ? AND created_at < ?`,
		from, to,
	).Scan(&dst.AutoDisconnectCount).Error
}

type snapshotRow struct {
	Total     int64
	Active    int64
	Blocked   int64
	Balance   float64
	Low       int64
	Recharged float64
	Consumed  float64
}

func (s *statsService) computeSnapshot(ctx context.Context, dst *AccountsSnapshot) error {
	var row snapshotRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total,
		        COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active,
		        COALESCE(SUM(CASE WHEN is_blocked THEN 1 ELSE 0 END), 0) AS blocked,
		        COALESCE(SUM(current_balance), 0) AS balance,
		        COALESCE(SUM(CASE WHEN current_balance <
		            (CASE WHEN low_balance_threshold > 0 THEN low_balance_threshold ELSE 100 END)
		            THEN 1 ELSE 0 END), 0) AS low,
		        COALESCE(SUM(total_recharged), 0) AS recharged,
		        COALESCE(SUM(total_consumed), 0) AS consumed
		 FROM prepaid_accounts`,
	).Scan(&row).Error
	if err != nil {
		return err
	}

	dst.TotalAccounts = row.Total
	dst.ActiveAccounts = row.Active
	dst.BlockedAccounts = row.Blocked
	dst.TotalBalance = round2(row.Balance)
	dst.LowBalanceCount = row.Low
	dst.TotalRecharged = round2(row.Recharged)
	dst.TotalConsumed = round2(row.Consumed)
	dst.RemainingCredit = round2(row.Recharged - row.Consumed)
	return nil
}

// round2 rounds at the aggregate, not per row: 100.005 + 50.00 sums first and
// rounds to 150.01.
func round2(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}
