package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
	consumerrepository "github.com/voltmesh/gridadmin/internal/consumer/repository"
	"github.com/voltmesh/gridadmin/internal/notification/domain"
	"github.com/voltmesh/gridadmin/internal/notification/repository"
	"github.com/voltmesh/gridadmin/internal/observability/metrics"
)

type fakeEmail struct {
	sent []string
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, to []string, subject, body string) error {
	_ = ctx
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, subject)
	return nil
}

type fakeSMS struct {
	sent []string
	err  error
}

func (f *fakeSMS) Send(ctx context.Context, to, message string) error {
	_ = ctx
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type dispatcherFixture struct {
	dispatcher domain.Dispatcher
	db         *gorm.DB
	node       *snowflake.Node
	email      *fakeEmail
	sms        *fakeSMS
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&consumerdomain.Consumer{}, &domain.Notification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	em := &fakeEmail{}
	sm := &fakeSMS{}
	d := New(Params{
		DB:           gdb,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         repository.Provide(),
		ConsumerRepo: consumerrepository.Provide(),
		Email:        em,
		SMS:          sm,
		Metrics:      metrics.Default(),
	})
	return &dispatcherFixture{dispatcher: d, db: gdb, node: node, email: em, sms: sm}
}

func (f *dispatcherFixture) seedConsumer(t *testing.T, email, phone string) *consumerdomain.Consumer {
	t.Helper()
	consumer := &consumerdomain.Consumer{
		ID:             f.node.Generate(),
		ConsumerNumber: "CON-2026-000042",
		Name:           "A Verma",
		Email:          email,
		Phone:          phone,
		Active:         true,
	}
	require.NoError(t, f.db.Create(consumer).Error)
	return consumer
}

func (f *dispatcherFixture) fetchStatus(t *testing.T, id string) domain.Status {
	t.Helper()
	resp, err := f.dispatcher.GetByID(context.Background(), id)
	require.NoError(t, err)
	return resp.Status
}

func TestRaisePersistsRowWhenNothingDeliverable(t *testing.T) {
	f := newDispatcherFixture(t)
	consumer := f.seedConsumer(t, "", "")

	result, err := f.dispatcher.Raise(context.Background(), domain.KindLowBalanceAlert, domain.Context{
		ConsumerID:    consumer.ID.String(),
		AccountNumber: "ACC-2026-000007",
		Balance:       42.5,
	})
	require.NoError(t, err)

	assert.True(t, result.Recorded)
	assert.False(t, result.Delivered)
	assert.Equal(t, domain.OutcomeSkipped, result.Channels[domain.ChannelPush])
	assert.Equal(t, domain.OutcomeSkipped, result.Channels[domain.ChannelEmail])
	assert.Equal(t, domain.OutcomeSkipped, result.Channels[domain.ChannelSMS])

	// No channel was attempted, so the row stands as PENDING.
	assert.Equal(t, domain.StatusPending, f.fetchStatus(t, result.NotificationID))
}

func TestRaiseMarksSentWhenAllAttemptedChannelsSucceed(t *testing.T) {
	f := newDispatcherFixture(t)
	consumer := f.seedConsumer(t, "a.verma@example.com", "+919800000001")

	result, err := f.dispatcher.Raise(context.Background(), domain.KindEmergencyLowAlert, domain.Context{
		ConsumerID:    consumer.ID.String(),
		AccountNumber: "ACC-2026-000007",
		Balance:       5,
	})
	require.NoError(t, err)

	assert.True(t, result.Delivered)
	assert.Equal(t, domain.OutcomeDelivered, result.Channels[domain.ChannelEmail])
	assert.Equal(t, domain.OutcomeDelivered, result.Channels[domain.ChannelSMS])
	assert.Len(t, f.email.sent, 1)
	assert.Len(t, f.sms.sent, 1)

	assert.Equal(t, domain.StatusSent, f.fetchStatus(t, result.NotificationID))
}

func TestRaiseMarksFailedWhenAChannelFails(t *testing.T) {
	f := newDispatcherFixture(t)
	f.email.err = errors.New("smtp: connection refused")
	consumer := f.seedConsumer(t, "a.verma@example.com", "+919800000001")

	result, err := f.dispatcher.Raise(context.Background(), domain.KindPowerFailureAlert, domain.Context{
		ConsumerID:  consumer.ID.String(),
		MeterSerial: "MTR-7781",
		FeederName:  "Feeder 4",
		DTRName:     "DTR-North-2",
	})
	require.NoError(t, err)

	assert.False(t, result.Delivered)
	assert.True(t, result.DeliveryFailed())
	assert.Equal(t, domain.OutcomeFailed, result.Channels[domain.ChannelEmail])
	assert.Equal(t, domain.OutcomeDelivered, result.Channels[domain.ChannelSMS])

	// The failed email never removes the row.
	assert.Equal(t, domain.StatusFailed, f.fetchStatus(t, result.NotificationID))
}

func TestAnnounceWithoutHubStaysPending(t *testing.T) {
	f := newDispatcherFixture(t)

	result, err := f.dispatcher.Announce(context.Background(), domain.AnnounceRequest{
		Title:   "Planned outage",
		Message: "Feeder 4 down for maintenance 02:00-04:00",
	})
	require.NoError(t, err)

	assert.True(t, result.Recorded)
	assert.False(t, result.Delivered)
	assert.Equal(t, domain.OutcomeSkipped, result.Channels[domain.ChannelPush])
	assert.Equal(t, domain.StatusPending, f.fetchStatus(t, result.NotificationID))
}

func TestAnnounceRejectsEmptyContent(t *testing.T) {
	f := newDispatcherFixture(t)

	_, err := f.dispatcher.Announce(context.Background(), domain.AnnounceRequest{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListFiltersByStatus(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	consumer := f.seedConsumer(t, "", "")

	for i := 0; i < 3; i++ {
		_, err := f.dispatcher.Raise(ctx, domain.KindLowBalanceAlert, domain.Context{
			ConsumerID:    consumer.ID.String(),
			AccountNumber: "ACC-2026-000007",
			Balance:       42.5,
		})
		require.NoError(t, err)
	}

	resp, err := f.dispatcher.List(ctx, domain.ListRequest{Status: string(domain.StatusPending)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Pagination.TotalCount)

	none, err := f.dispatcher.List(ctx, domain.ListRequest{Status: string(domain.StatusSent)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), none.Pagination.TotalCount)
}
