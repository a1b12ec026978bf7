package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/internal/alert/domain"
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
}

type alertService struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &alertService{
		db:    p.DB,
		log:   p.Log.Named("alert.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *alertService) Raise(ctx context.Context, req domain.RaiseRequest) (*domain.Response, error) {
	alertType, err := domain.ParseType(req.Type)
	if err != nil {
		return nil, err
	}

	var accountID, meterID snowflake.ID
	if req.AccountID != "" {
		accountID, err = domain.ParseID(req.AccountID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
	}
	if req.MeterID != "" {
		meterID, err = domain.ParseID(req.MeterID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
	}

	open, err := s.repo.FindOpen(ctx, s.db, alertType, accountID, meterID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return toResponse(open), nil
	}

	severity := domain.DefaultSeverity(alertType)
	if req.Severity != "" {
		severity = domain.AlertSeverity(strings.ToUpper(strings.TrimSpace(req.Severity)))
	}

	alert := &domain.Alert{
		ID:        s.genID.Generate(),
		Type:      alertType,
		Severity:  severity,
		AccountID: accountID,
		MeterID:   meterID,
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, alert); err != nil {
		s.log.Error("insert alert", zap.Error(err))
		return nil, err
	}

	return toResponse(alert), nil
}

func (s *alertService) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page := req.Page.Normalize()

	filter := domain.ListFilter{Resolved: req.Resolved, Page: page}
	if req.Type != "" {
		alertType, err := domain.ParseType(req.Type)
		if err != nil {
			return nil, err
		}
		filter.Type = string(alertType)
	}

	alerts, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		s.log.Error("list alerts", zap.Error(err))
		return nil, err
	}

	items := make([]domain.Response, 0, len(alerts))
	for i := range alerts {
		items = append(items, *toResponse(&alerts[i]))
	}

	return &domain.ListResponse{
		Alerts:     items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *alertService) Resolve(ctx context.Context, id string) (*domain.Response, error) {
	alertID, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	alert, err := s.repo.FindByID(ctx, s.db, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, domain.ErrNotFound
	}
	if alert.Resolved {
		return toResponse(alert), nil
	}

	now := time.Now().UTC()
	if err := s.repo.MarkResolved(ctx, s.db, alertID, now); err != nil {
		s.log.Error("resolve alert", zap.Error(err))
		return nil, err
	}

	alert.Resolved = true
	alert.ResolvedAt = &now
	return toResponse(alert), nil
}

func toResponse(alert *domain.Alert) *domain.Response {
	resp := &domain.Response{
		ID:         alert.ID.String(),
		Type:       alert.Type,
		Severity:   alert.Severity,
		Message:    alert.Message,
		Resolved:   alert.Resolved,
		ResolvedAt: alert.ResolvedAt,
		CreatedAt:  alert.CreatedAt,
	}
	if alert.AccountID != 0 {
		resp.AccountID = alert.AccountID.String()
	}
	if alert.MeterID != 0 {
		resp.MeterID = alert.MeterID.String()
	}
	return resp
}
