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

	"github.com/voltmesh/gridadmin/internal/meter/domain"
	"github.com/voltmesh/gridadmin/internal/meter/repository"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Meter{}, &domain.MeterReading{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func createMeter(t *testing.T, svc domain.Service, serial string) *domain.Response {
	t.Helper()
	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		SerialNumber: serial,
		DTRName:      "DTR-North-2",
		FeederName:   "Feeder 4",
		MeterType:    "SINGLE_PHASE",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateDefaultsToActive(t *testing.T) {
	svc := newTestService(t)
	meter := createMeter(t, svc, "MTR-7781")

	assert.Equal(t, domain.MeterStatusActive, meter.Status)
	assert.Equal(t, "MTR-7781", meter.SerialNumber)
	assert.Nil(t, meter.LastReadingAt)
}

func TestCreateRejectsDuplicateSerial(t *testing.T) {
	svc := newTestService(t)
	createMeter(t, svc, "MTR-7781")

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		SerialNumber: "MTR-7781",
		MeterType:    "THREE_PHASE",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateSerial)
}

func TestGetBySerial(t *testing.T) {
	svc := newTestService(t)
	created := createMeter(t, svc, "MTR-7781")

	fetched, err := svc.GetBySerial(context.Background(), "MTR-7781")
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	_, err = svc.GetBySerial(context.Background(), "MTR-0000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordReadingUpdatesMeterSnapshot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	meter := createMeter(t, svc, "MTR-7781")

	reading, err := svc.RecordReading(ctx, domain.ReadingRequest{
		MeterID:    meter.ID,
		ReadingKWh: 1042.5,
		Voltage:    229.8,
		PowerKW:    3.1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1042.5, reading.ReadingKWh)
	assert.False(t, reading.RecordedAt.IsZero())

	fetched, err := svc.GetByID(ctx, meter.ID)
	require.NoError(t, err)
	assert.Equal(t, 1042.5, fetched.LastReadingKW)
	require.NotNil(t, fetched.LastReadingAt)
}

func TestRecordReadingRejectsNegativeValue(t *testing.T) {
	svc := newTestService(t)
	meter := createMeter(t, svc, "MTR-7781")

	_, err := svc.RecordReading(context.Background(), domain.ReadingRequest{
		MeterID:    meter.ID,
		ReadingKWh: -1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReading)
}

func TestUpdateStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	meter := createMeter(t, svc, "MTR-7781")

	status := "DISCONNECTED"
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: meter.ID, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.MeterStatusDisconnected, updated.Status)

	bad := "EXPLODED"
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: meter.ID, Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestListFiltersByDTR(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	createMeter(t, svc, "MTR-1")
	createMeter(t, svc, "MTR-2")

	other, err := svc.Create(ctx, domain.CreateRequest{
		SerialNumber: "MTR-3",
		DTRName:      "DTR-South-1",
		MeterType:    "SINGLE_PHASE",
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListRequest{DTRName: "DTR-South-1"})
	require.NoError(t, err)
	require.Len(t, resp.Meters, 1)
	assert.Equal(t, other.ID, resp.Meters[0].ID)

	all, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.TotalCount)
}
