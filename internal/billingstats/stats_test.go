package billingstats

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/voltmesh/gridadmin/internal/account/domain"
	alertdomain "github.com/voltmesh/gridadmin/internal/alert/domain"
	"github.com/voltmesh/gridadmin/internal/clock"
)

type statsFixture struct {
	svc  Service
	db   *gorm.DB
	node *snowflake.Node
	now  time.Time
}

func newStatsFixture(t *testing.T) *statsFixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&accountdomain.PrepaidAccount{},
		&accountdomain.Recharge{},
		&accountdomain.ConsumptionTransaction{},
		&alertdomain.Alert{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	// March 10th, mid-month, so last month is February and a rolling
	// 30-day window would leak into it.
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	svc := New(Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(now),
	})
	return &statsFixture{svc: svc, db: gdb, node: node, now: now}
}

func (f *statsFixture) recharge(t *testing.T, account snowflake.ID, amount float64, status accountdomain.PaymentStatus, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&accountdomain.Recharge{
		ID:            f.node.Generate(),
		AccountID:     account,
		Amount:        amount,
		PaymentStatus: status,
		CreatedAt:     at,
	}).Error)
}

func (f *statsFixture) consumption(t *testing.T, account snowflake.ID, kwh, amount float64, status accountdomain.TransactionStatus, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&accountdomain.ConsumptionTransaction{
		ID:              f.node.Generate(),
		AccountID:       account,
		TransactionType: accountdomain.TransactionTypeConsumption,
		Status:          status,
		ConsumptionKWh:  kwh,
		Amount:          amount,
		CreatedAt:       at,
	}).Error)
}

func (f *statsFixture) alert(t *testing.T, kind alertdomain.AlertType, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&alertdomain.Alert{
		ID:        f.node.Generate(),
		Type:      kind,
		Severity:  alertdomain.DefaultSeverity(kind),
		CreatedAt: at,
	}).Error)
}

func TestComputeWindowPartitioning(t *testing.T) {
	f := newStatsFixture(t)
	acctA := f.node.Generate()
	acctB := f.node.Generate()

	today := f.now.Add(-4 * time.Hour)
	yesterday := f.now.AddDate(0, 0, -1)
	// February 27th: inside last calendar month but within the last 30
	// days. Real month windows must keep it out of this month.
	lastMonth := time.Date(2026, time.February, 27, 9, 0, 0, 0, time.UTC)

	f.recharge(t, acctA, 100.0625, accountdomain.PaymentStatusSuccess, today)
	f.recharge(t, acctB, 50.0625, accountdomain.PaymentStatusSuccess, today)
	f.recharge(t, acctA, 200, accountdomain.PaymentStatusSuccess, yesterday)
	f.recharge(t, acctA, 300, accountdomain.PaymentStatusSuccess, lastMonth)
	f.recharge(t, acctA, 999, accountdomain.PaymentStatusFailed, today)

	f.consumption(t, acctA, 10, 80, accountdomain.TransactionStatusCompleted, today)
	f.consumption(t, acctA, 5, 40, accountdomain.TransactionStatusCompleted, lastMonth)
	f.consumption(t, acctA, 99, 999, accountdomain.TransactionStatusPending, today)

	f.alert(t, alertdomain.AlertTypeLowBalance, today)
	f.alert(t, alertdomain.AlertTypePowerFailure, today)
	f.alert(t, alertdomain.AlertTypeEmergencyLow, lastMonth)

	report, err := f.svc.Compute(context.Background())
	require.NoError(t, err)

	// Sum first then round: 100.0625 + 50.0625 = 150.125 rounds to
	// 150.13. Rounding per row would have given 150.12.
	assert.Equal(t, 150.13, report.Today.RechargeAmount)
	assert.Equal(t, int64(2), report.Today.RechargeCount)
	assert.Equal(t, int64(2), report.Today.RechargeAccounts)
	assert.Equal(t, 10.0, report.Today.ConsumptionKWh)
	assert.Equal(t, 80.0, report.Today.ConsumptionAmount)
	assert.Equal(t, int64(1), report.Today.ConsumptionCount)
	assert.Equal(t, int64(2), report.Today.AlertCount)
	assert.Equal(t, int64(1), report.Today.AutoDisconnectCount)

	assert.Equal(t, 200.0, report.Yesterday.RechargeAmount)
	assert.Equal(t, int64(1), report.Yesterday.RechargeCount)
	assert.Equal(t, int64(0), report.Yesterday.AlertCount)

	// This month covers today and yesterday but not February 27th.
	assert.Equal(t, 350.13, report.ThisMonth.RechargeAmount)
	assert.Equal(t, int64(3), report.ThisMonth.RechargeCount)

	assert.Equal(t, 300.0, report.LastMonth.RechargeAmount)
	assert.Equal(t, 40.0, report.LastMonth.ConsumptionAmount)
	assert.Equal(t, 5.0, report.LastMonth.ConsumptionKWh)
	assert.Equal(t, int64(1), report.LastMonth.AlertCount)
	assert.Equal(t, int64(1), report.LastMonth.AutoDisconnectCount)
}

func TestComputeWindowBounds(t *testing.T) {
	f := newStatsFixture(t)

	report, err := f.svc.Compute(context.Background())
	require.NoError(t, err)

	// Adjacent windows share a boundary instant and never overlap.
	assert.Equal(t, report.Yesterday.To, report.Today.From)
	assert.Equal(t, report.LastMonth.To, report.ThisMonth.From)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), report.ThisMonth.From)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), report.ThisMonth.To)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), report.LastMonth.From)
}

func TestAccountsSnapshot(t *testing.T) {
	f := newStatsFixture(t)

	seed := func(balance, threshold float64, active, blocked bool) {
		require.NoError(t, f.db.Create(&accountdomain.PrepaidAccount{
			ID:                  f.node.Generate(),
			AccountNumber:       f.node.Generate().String(),
			ConsumerID:          f.node.Generate(),
			CurrentBalance:      balance,
			TotalRecharged:      balance,
			LowBalanceThreshold: threshold,
			EmergencyThreshold:  20,
			IsActive:            active,
			IsBlocked:           blocked,
		}).Error)
	}

	seed(150, 100, true, false) // healthy
	seed(50, 100, true, false)  // below its own threshold
	seed(80, 0, true, false)    // threshold unset: default 100 applies
	seed(150, 100, false, true) // blocked and inactive

	report, err := f.svc.Compute(context.Background())
	require.NoError(t, err)

	snap := report.Accounts
	assert.Equal(t, int64(4), snap.TotalAccounts)
	assert.Equal(t, int64(3), snap.ActiveAccounts)
	assert.Equal(t, int64(1), snap.BlockedAccounts)
	assert.Equal(t, 430.0, snap.TotalBalance)
	assert.Equal(t, int64(2), snap.LowBalanceCount)
	assert.Equal(t, 430.0, snap.TotalRecharged)
	assert.Equal(t, 0.0, snap.TotalConsumed)
	assert.Equal(t, 430.0, snap.RemainingCredit)
}
