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

	"github.com/voltmesh/gridadmin/internal/ticket/domain"
	"github.com/voltmesh/gridadmin/internal/ticket/repository"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Ticket{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func createTicket(t *testing.T, svc domain.Service) *domain.Response {
	t.Helper()
	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Subject:  "No supply after recharge",
		Category: "SUPPLY",
		Priority: "MEDIUM",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, resp.Status)
	require.NotEmpty(t, resp.TicketNumber)
	return resp
}

func TestStatusTransitions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ticket := createTicket(t, svc)

	// OPEN -> IN_PROGRESS -> RESOLVED is the normal path.
	resp, err := svc.UpdateStatus(ctx, ticket.ID, "IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, resp.Status)
	assert.Nil(t, resp.ResolvedAt)

	resp, err = svc.UpdateStatus(ctx, ticket.ID, "RESOLVED")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resp.Status)
	assert.NotNil(t, resp.ResolvedAt)

	// Reopening a resolved ticket clears the resolution timestamp.
	resp, err = svc.UpdateStatus(ctx, ticket.ID, "IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, resp.Status)
	assert.Nil(t, resp.ResolvedAt)

	resp, err = svc.UpdateStatus(ctx, ticket.ID, "CLOSED")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, resp.Status)

	// CLOSED is terminal.
	_, err = svc.UpdateStatus(ctx, ticket.ID, "OPEN")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.UpdateStatus(ctx, ticket.ID, "IN_PROGRESS")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStatusSameValueIsNoOp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ticket := createTicket(t, svc)

	resp, err := svc.UpdateStatus(ctx, ticket.ID, "OPEN")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, resp.Status)
}

func TestStatusRejectsUnknownValue(t *testing.T) {
	svc := newTestService(t)
	ticket := createTicket(t, svc)

	_, err := svc.UpdateStatus(context.Background(), ticket.ID, "ARCHIVED")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestEscalate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ticket := createTicket(t, svc)

	resp, err := svc.Escalate(ctx, ticket.ID, "customer called twice")
	require.NoError(t, err)
	assert.True(t, resp.Escalated)
	assert.NotNil(t, resp.EscalatedAt)
	assert.Equal(t, domain.TicketPriorityUrgent, resp.Priority)

	_, err = svc.Escalate(ctx, ticket.ID, "again")
	assert.ErrorIs(t, err, domain.ErrAlreadyEscalated)
}

func TestEscalateClosedTicketRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ticket := createTicket(t, svc)

	_, err := svc.UpdateStatus(ctx, ticket.ID, "CLOSED")
	require.NoError(t, err)

	_, err = svc.Escalate(ctx, ticket.ID, "too late")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to domain.TicketStatus
		ok       bool
	}{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{domain.TicketStatusOpen, domain.TicketStatusResolved, true},
		{domain.TicketStatusOpen, domain.TicketStatusClosed, true},
		{domain.TicketStatusInProgress, domain.TicketStatusOpen, false},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{domain.TicketStatusInProgress, domain.TicketStatusClosed, true},
		{domain.TicketStatusResolved, domain.TicketStatusInProgress, true},
		{domain.TicketStatusResolved, domain.TicketStatusClosed, true},
		{domain.TicketStatusResolved, domain.TicketStatusOpen, false},
		{domain.TicketStatusClosed, domain.TicketStatusOpen, false},
		{domain.TicketStatusClosed, domain.TicketStatusResolved, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, domain.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
