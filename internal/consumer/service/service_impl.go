package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
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
	Repo  consumerdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  consumerdomain.Repository
}

func New(p Params) consumerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("consumer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req consumerdomain.CreateRequest) (*consumerdomain.Response, error) {
	number := strings.TrimSpace(req.ConsumerNumber)
	if number == "" {
		return nil, consumerdomain.ErrInvalidConsumerNumber
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, consumerdomain.ErrInvalidName
	}

	existing, err := s.repo.FindByNumber(ctx, s.db, number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, consumerdomain.ErrDuplicateNumber
	}

	now := time.Now().UTC()
	consumer := &consumerdomain.Consumer{
		ID:             s.genID.Generate(),
		ConsumerNumber: number,
		Name:           name,
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		LocationID:     strings.TrimSpace(req.LocationID),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, consumer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, consumerdomain.ErrDuplicateNumber
		}
		return nil, err
	}
	return s.toResponse(consumer), nil
}

func (s *Service) List(ctx context.Context, req consumerdomain.ListRequest) (*consumerdomain.ListResponse, error) {
	consumers, total, err := s.repo.List(ctx, s.db, consumerdomain.ListFilter{
		Search:     req.Search,
		LocationID: req.LocationID,
		Active:     req.Active,
		Page:       req.Page,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]consumerdomain.Response, 0, len(consumers))
	for i := range consumers {
		resp = append(resp, *s.toResponse(&consumers[i]))
	}
	return &consumerdomain.ListResponse{
		Consumers:  resp,
		Pagination: pagination.BuildPageInfo(req.Page, total),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*consumerdomain.Response, error) {
	consumerID, err := consumerdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, consumerdomain.ErrInvalidID
	}
	consumer, err := s.repo.FindByID(ctx, s.db, consumerID)
	if err != nil {
		return nil, err
	}
	if consumer == nil {
		return nil, consumerdomain.ErrNotFound
	}
	return s.toResponse(consumer), nil
}

func (s *Service) Update(ctx context.Context, req consumerdomain.UpdateRequest) (*consumerdomain.Response, error) {
	consumerID, err := consumerdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, consumerdomain.ErrInvalidID
	}
	consumer, err := s.repo.FindByID(ctx, s.db, consumerID)
	if err != nil {
		return nil, err
	}
	if consumer == nil {
		return nil, consumerdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, consumerdomain.ErrInvalidName
		}
		consumer.Name = name
	}
	if req.Email != nil {
		consumer.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		consumer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		consumer.Address = strings.TrimSpace(*req.Address)
	}
	if req.LocationID != nil {
		consumer.LocationID = strings.TrimSpace(*req.LocationID)
	}
	if req.Active != nil {
		consumer.Active = *req.Active
	}

	consumer.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, consumer); err != nil {
		return nil, err
	}
	return s.toResponse(consumer), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	consumerID, err := consumerdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return consumerdomain.ErrInvalidID
	}
	consumer, err := s.repo.FindByID(ctx, s.db, consumerID)
	if err != nil {
		return err
	}
	if consumer == nil {
		return consumerdomain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, consumerID)
}

func (s *Service) toResponse(c *consumerdomain.Consumer) *consumerdomain.Response {
	return &consumerdomain.Response{
		ID:             c.ID.String(),
		ConsumerNumber: c.ConsumerNumber,
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		LocationID:     c.LocationID,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
