package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/internal/meter/domain"
	"github.com/voltmesh/gridadmin/internal/ws"
	"github.com/voltmesh/gridadmin/pkg/db"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Hub   *ws.Hub `optional:"true"`
}

type meterService struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	hub   *ws.Hub
}

func New(p Params) domain.Service {
	return &meterService{
		db:    p.DB,
		log:   p.Log.Named("meter.service"),
		genID: p.GenID,
		repo:  p.Repo,
		hub:   p.Hub,
	}
}

func (s *meterService) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	serial := strings.TrimSpace(req.SerialNumber)
	if serial == "" {
		return nil, domain.ErrInvalidSerial
	}
	meterType := strings.TrimSpace(req.MeterType)
	if meterType == "" {
		return nil, domain.ErrInvalidMeterType
	}

	existing, err := s.repo.FindBySerial(ctx, s.db, serial)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateSerial
	}

	meter := &domain.Meter{
		ID:           s.genID.Generate(),
		SerialNumber: serial,
		DTRName:      strings.TrimSpace(req.DTRName),
		FeederName:   strings.TrimSpace(req.FeederName),
		MeterType:    meterType,
		Status:       domain.MeterStatusActive,
	}
	if req.ConsumerID != "" {
		consumerID, err := domain.ParseID(req.ConsumerID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		meter.ConsumerID = consumerID
	}

	if err := s.repo.Insert(ctx, s.db, meter); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSerial
		}
		s.log.Error("insert meter", zap.Error(err))
		return nil, err
	}

	return toResponse(meter), nil
}

func (s *meterService) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page := req.Page.Normalize()

	filter := domain.ListFilter{
		Serial:  strings.TrimSpace(req.Serial),
		DTRName: strings.TrimSpace(req.DTRName),
		Page:    page,
	}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(status)
	}

	meters, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		s.log.Error("list meters", zap.Error(err))
		return nil, err
	}

	items := make([]domain.Response, 0, len(meters))
	for i := range meters {
		items = append(items, *toResponse(&meters[i]))
	}

	return &domain.ListResponse{
		Meters:     items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *meterService) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	meterID, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	meter, err := s.repo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, domain.ErrNotFound
	}

	return toResponse(meter), nil
}

func (s *meterService) GetBySerial(ctx context.Context, serial string) (*domain.Response, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, domain.ErrInvalidSerial
	}

	meter, err := s.repo.FindBySerial(ctx, s.db, serial)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, domain.ErrNotFound
	}

	return toResponse(meter), nil
}

func (s *meterService) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	meterID, err := domain.ParseID(req.ID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	meter, err := s.repo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, domain.ErrNotFound
	}

	if req.ConsumerID != nil {
		if *req.ConsumerID == "" {
			meter.ConsumerID = 0
		} else {
			consumerID, err := domain.ParseID(*req.ConsumerID)
			if err != nil {
				return nil, domain.ErrInvalidID
			}
			meter.ConsumerID = consumerID
		}
	}
	if req.DTRName != nil {
		meter.DTRName = strings.TrimSpace(*req.DTRName)
	}
	if req.FeederName != nil {
		meter.FeederName = strings.TrimSpace(*req.FeederName)
	}
	if req.MeterType != nil {
		meterType := strings.TrimSpace(*req.MeterType)
		if meterType == "" {
			return nil, domain.ErrInvalidMeterType
		}
		meter.MeterType = meterType
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		meter.Status = status
	}

	meter.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, meter); err != nil {
		s.log.Error("update meter", zap.Error(err))
		return nil, err
	}

	return toResponse(meter), nil
}

func (s *meterService) Delete(ctx context.Context, id string) error {
	meterID, err := domain.ParseID(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	meter, err := s.repo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return err
	}
	if meter == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, meterID)
}

// RecordReading stores a telemetry sample and moves the meter's last-seen
// reading forward. Dashboards subscribed to the meter's DTR room get the
// sample pushed immediately.
func (s *meterService) RecordReading(ctx context.Context, req domain.ReadingRequest) (*domain.ReadingResponse, error) {
	meterID, err := domain.ParseID(req.MeterID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if req.ReadingKWh < 0 || req.PowerKW < 0 {
		return nil, domain.ErrInvalidReading
	}

	meter, err := s.repo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return nil, domain.ErrNotFound
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}

	reading := &domain.MeterReading{
		ID:         s.genID.Generate(),
		MeterID:    meter.ID,
		ReadingKWh: req.ReadingKWh,
		Voltage:    req.Voltage,
		PowerKW:    req.PowerKW,
		RecordedAt: recordedAt,
	}

	if err := s.repo.InsertReading(ctx, s.db, reading); err != nil {
		s.log.Error("insert meter reading", zap.Error(err))
		return nil, err
	}

	meter.LastReadingKW = req.PowerKW
	meter.LastReadingAt = &recordedAt
	meter.UpdatedAt = recordedAt
	if err := s.repo.Update(ctx, s.db, meter); err != nil {
		s.log.Error("update meter last reading", zap.Error(err))
		return nil, err
	}

	resp := &domain.ReadingResponse{
		ID:         reading.ID.String(),
		MeterID:    meter.ID.String(),
		ReadingKWh: reading.ReadingKWh,
		Voltage:    reading.Voltage,
		PowerKW:    reading.PowerKW,
		RecordedAt: reading.RecordedAt,
	}

	if s.hub != nil && meter.DTRName != "" {
		s.hub.BroadcastRoom(ws.DTRRoom(meter.DTRName), ws.EventMeterReading, map[string]interface{}{
			"serialNumber": meter.SerialNumber,
			"dtrName":      meter.DTRName,
			"reading":      resp,
		})
	}

	return resp, nil
}

func toResponse(meter *domain.Meter) *domain.Response {
	resp := &domain.Response{
		ID:            meter.ID.String(),
		SerialNumber:  meter.SerialNumber,
		DTRName:       meter.DTRName,
		FeederName:    meter.FeederName,
		MeterType:     meter.MeterType,
		Status:        meter.Status,
		LastReadingKW: meter.LastReadingKW,
		LastReadingAt: meter.LastReadingAt,
		CreatedAt:     meter.CreatedAt,
		UpdatedAt:     meter.UpdatedAt,
	}
	if meter.ConsumerID != 0 {
		resp.ConsumerID = meter.ConsumerID.String()
	}
	return resp
}
