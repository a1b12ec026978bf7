package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltmesh/gridadmin/internal/account/domain"
	"github.com/voltmesh/gridadmin/internal/account/repository"
	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
	consumerrepository "github.com/voltmesh/gridadmin/internal/consumer/repository"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
)

type fixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	consumer *consumerdomain.Consumer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&consumerdomain.Consumer{},
		&domain.PrepaidAccount{},
		&domain.Recharge{},
		&domain.ConsumptionTransaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	consumer := &consumerdomain.Consumer{
		ID:             node.Generate(),
		ConsumerNumber: "CON-2026-000001",
		Name:           "R Sharma",
		Active:         true,
	}
	require.NoError(t, gdb.Create(consumer).Error)

	svc := New(Params{
		DB:           gdb,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         repository.Provide(),
		ConsumerRepo: consumerrepository.Provide(),
	})
	return &fixture{svc: svc, db: gdb, node: node, consumer: consumer}
}

func (f *fixture) createAccount(t *testing.T, balance float64) *domain.Response {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		ConsumerID:     f.consumer.ID.String(),
		InitialBalance: balance,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	acct := f.createAccount(t, 500)

	assert.NotEmpty(t, acct.AccountNumber)
	assert.Equal(t, 500.0, acct.CurrentBalance)
	assert.Equal(t, domain.DefaultLowBalanceThreshold, acct.LowBalanceThreshold)
	assert.Equal(t, domain.DefaultEmergencyThreshold, acct.EmergencyThreshold)
	assert.True(t, acct.IsActive)
	assert.False(t, acct.IsBlocked)
}

func TestCreateRejectsSecondAccountForConsumer(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, 0)

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		ConsumerID: f.consumer.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateRejectsUnknownConsumer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		ConsumerID: f.node.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrConsumerMissing)
}

func TestRechargeAdjustsBalanceAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.createAccount(t, 100)

	recharge, err := f.svc.Recharge(ctx, domain.RechargeRequest{
		AccountID:     acct.ID,
		Amount:        250,
		PaymentMethod: "UPI",
	})
	require.NoError(t, err)
	assert.Equal(t, 350.0, recharge.NewBalance)
	assert.Equal(t, domain.PaymentStatusSuccess, recharge.PaymentStatus)
	assert.NotEmpty(t, recharge.BillNumber)

	fetched, err := f.svc.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 350.0, fetched.CurrentBalance)
	assert.Equal(t, 350.0, fetched.TotalRecharged)
}

func TestConsumptionAdjustsBalanceAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.createAccount(t, 400)

	tx, err := f.svc.RecordConsumption(ctx, domain.ConsumptionRequest{
		AccountID:      acct.ID,
		ConsumptionKWh: 12.5,
		Amount:         90,
	})
	require.NoError(t, err)
	assert.Equal(t, 310.0, tx.NewBalance)
	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)

	fetched, err := f.svc.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 310.0, fetched.CurrentBalance)
	assert.Equal(t, 90.0, fetched.TotalConsumed)
}

func TestBalanceMathAvoidsFloatDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.createAccount(t, 0.1)

	// 0.1 + 0.2 drifts to 0.30000000000000004 in raw float64 arithmetic;
	// decimal keeps the stored balance at exactly 0.30.
	recharge, err := f.svc.Recharge(ctx, domain.RechargeRequest{
		AccountID:     acct.ID,
		Amount:        0.2,
		PaymentMethod: "UPI",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.3, recharge.NewBalance)

	tx, err := f.svc.RecordConsumption(ctx, domain.ConsumptionRequest{
		AccountID:      acct.ID,
		ConsumptionKWh: 1,
		Amount:         0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.1, tx.NewBalance)

	fetched, err := f.svc.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.1, fetched.CurrentBalance)
	assert.Equal(t, 0.3, fetched.TotalRecharged)
	assert.Equal(t, 0.2, fetched.TotalConsumed)
}

func TestConsumptionMayDriveBalanceNegative(t *testing.T) {
	f := newFixture(t)
	acct := f.createAccount(t, 50)

	tx, err := f.svc.RecordConsumption(context.Background(), domain.ConsumptionRequest{
		AccountID:      acct.ID,
		ConsumptionKWh: 30,
		Amount:         120,
	})
	require.NoError(t, err)
	assert.Equal(t, -70.0, tx.NewBalance)
}

func TestBlockedAccountRejectsConsumption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.createAccount(t, 500)

	blocked, err := f.svc.Block(ctx, acct.ID, "meter tamper suspected")
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)
	assert.Equal(t, "meter tamper suspected", blocked.BlockReason)

	_, err = f.svc.RecordConsumption(ctx, domain.ConsumptionRequest{
		AccountID:      acct.ID,
		ConsumptionKWh: 1,
		Amount:         5,
	})
	assert.ErrorIs(t, err, domain.ErrBlocked)

	// A blocked consumer can still pay.
	recharge, err := f.svc.Recharge(ctx, domain.RechargeRequest{AccountID: acct.ID, Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, 600.0, recharge.NewBalance)

	unblocked, err := f.svc.Unblock(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, unblocked.IsBlocked)
	assert.Empty(t, unblocked.BlockReason)
}

func TestRechargeRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	acct := f.createAccount(t, 0)

	_, err := f.svc.Recharge(context.Background(), domain.RechargeRequest{
		AccountID: acct.ID,
		Amount:    0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestListRechargesPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.createAccount(t, 0)

	for i := 0; i < 12; i++ {
		_, err := f.svc.Recharge(ctx, domain.RechargeRequest{AccountID: acct.ID, Amount: 10})
		require.NoError(t, err)
	}

	resp, err := f.svc.ListRecharges(ctx, acct.ID, pagination.Page{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, resp.Recharges, 2)
	assert.Equal(t, int64(12), resp.Pagination.TotalCount)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.False(t, resp.Pagination.HasNextPage)
	assert.True(t, resp.Pagination.HasPrevPage)
}
