package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/internal/numbering"
	"github.com/voltmesh/gridadmin/internal/ticket/domain"
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

type ticketService struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	hub   *ws.Hub
}

func New(p Params) domain.Service {
	return &ticketService{
		db:    p.DB,
		log:   p.Log.Named("ticket.service"),
		genID: p.GenID,
		repo:  p.Repo,
		hub:   p.Hub,
	}
}

func (s *ticketService) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, domain.ErrInvalidSubject
	}

	priority := domain.TicketPriorityMedium
	if req.Priority != "" {
		parsed, err := domain.ParsePriority(req.Priority)
		if err != nil {
			return nil, err
		}
		priority = parsed
	}

	now := time.Now().UTC()
	id := s.genID.Generate()
	ticket := &domain.Ticket{
		ID:           id,
		TicketNumber: numbering.TicketNumber(now, id.Int64()),
		Category:     strings.TrimSpace(req.Category),
		Subject:      subject,
		Description:  strings.TrimSpace(req.Description),
		Priority:     priority,
		Status:       domain.TicketStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var err error
	if req.ConsumerID != "" {
		ticket.ConsumerID, err = domain.ParseID(req.ConsumerID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
	}
	if req.MeterID != "" {
		ticket.MeterID, err = domain.ParseID(req.MeterID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
	}
	if req.AssigneeID != "" {
		ticket.AssigneeID, err = domain.ParseID(req.AssigneeID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
	}

	if err := s.repo.Insert(ctx, s.db, ticket); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Regenerate on the rare number collision.
			ticket.ID = s.genID.Generate()
			ticket.TicketNumber = numbering.TicketNumber(now, ticket.ID.Int64())
			err = s.repo.Insert(ctx, s.db, ticket)
		}
		if err != nil {
			s.log.Error("insert ticket", zap.Error(err))
			return nil, err
		}
	}

	resp := toResponse(ticket)
	s.notifyUpdated(ticket, resp)
	return resp, nil
}

func (s *ticketService) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page := req.Page.Normalize()

	filter := domain.ListFilter{
		Category: strings.TrimSpace(req.Category),
		Search:   strings.TrimSpace(req.Search),
		Page:     page,
	}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(status)
	}
	if req.Priority != "" {
		priority, err := domain.ParsePriority(req.Priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = string(priority)
	}
	if req.AssigneeID != "" {
		assigneeID, err := domain.ParseID(req.AssigneeID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		filter.AssigneeID = assigneeID
	}

	tickets, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		s.log.Error("list tickets", zap.Error(err))
		return nil, err
	}

	items := make([]domain.Response, 0, len(tickets))
	for i := range tickets {
		items = append(items, *toResponse(&tickets[i]))
	}

	return &domain.ListResponse{
		Tickets:    items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *ticketService) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(ticket), nil
}

func (s *ticketService) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	ticket, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		ticket.Category = strings.TrimSpace(*req.Category)
	}
	if req.Subject != nil {
		subject := strings.TrimSpace(*req.Subject)
		if subject == "" {
			return nil, domain.ErrInvalidSubject
		}
		ticket.Subject = subject
	}
	if req.Description != nil {
		ticket.Description = strings.TrimSpace(*req.Description)
	}
	if req.Priority != nil {
		priority, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		ticket.Priority = priority
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			ticket.AssigneeID = 0
		} else {
			assigneeID, err := domain.ParseID(*req.AssigneeID)
			if err != nil {
				return nil, domain.ErrInvalidID
			}
			ticket.AssigneeID = assigneeID
		}
	}

	ticket.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, ticket); err != nil {
		s.log.Error("update ticket", zap.Error(err))
		return nil, err
	}

	resp := toResponse(ticket)
	s.notifyUpdated(ticket, resp)
	return resp, nil
}

func (s *ticketService) Delete(ctx context.Context, id string) error {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, ticket.ID)
}

func (s *ticketService) UpdateStatus(ctx context.Context, id string, status string) (*domain.Response, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if ticket.Status == next {
		return toResponse(ticket), nil
	}
	if !domain.CanTransition(ticket.Status, next) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	ticket.Status = next
	ticket.UpdatedAt = now
	switch next {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusInProgress:
		ticket.ResolvedAt = nil
	}

	if err := s.repo.Update(ctx, s.db, ticket); err != nil {
		s.log.Error("update ticket status", zap.Error(err))
		return nil, err
	}

	resp := toResponse(ticket)
	s.notifyUpdated(ticket, resp)
	return resp, nil
}

func (s *ticketService) Escalate(ctx context.Context, id string, reason string) (*domain.Response, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Escalated {
		return nil, domain.ErrAlreadyEscalated
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	ticket.Escalated = true
	ticket.EscalatedAt = &now
	ticket.Priority = domain.TicketPriorityUrgent
	ticket.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, ticket); err != nil {
		s.log.Error("escalate ticket", zap.Error(err))
		return nil, err
	}

	resp := toResponse(ticket)
	if s.hub != nil {
		payload := map[string]interface{}{"ticket": resp, "reason": strings.TrimSpace(reason)}
		if ticket.AssigneeID != 0 {
			s.hub.BroadcastRoom(ws.UserRoom(ticket.AssigneeID.String()), ws.EventTicketEscalated, payload)
		}
		s.hub.BroadcastRoom(ws.AdminRoom, ws.EventTicketEscalated, payload)
	}
	return resp, nil
}

func (s *ticketService) load(ctx context.Context, id string) (*domain.Ticket, error) {
	ticketID, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	ticket, err := s.repo.FindByID(ctx, s.db, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, domain.ErrNotFound
	}
	return ticket, nil
}

func (s *ticketService) notifyUpdated(ticket *domain.Ticket, resp *domain.Response) {
	if s.hub == nil || ticket.AssigneeID == 0 {
		return
	}
	s.hub.BroadcastRoom(ws.UserRoom(ticket.AssigneeID.String()), ws.EventTicketUpdated, resp)
}

func toResponse(ticket *domain.Ticket) *domain.Response {
	resp := &domain.Response{
		ID:           ticket.ID.String(),
		TicketNumber: ticket.TicketNumber,
		Category:     ticket.Category,
		Subject:      ticket.Subject,
		Description:  ticket.Description,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		Escalated:    ticket.Escalated,
		EscalatedAt:  ticket.EscalatedAt,
		ResolvedAt:   ticket.ResolvedAt,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
	if ticket.ConsumerID != 0 {
		resp.ConsumerID = ticket.ConsumerID.String()
	}
	if ticket.MeterID != 0 {
		resp.MeterID = ticket.MeterID.String()
	}
	if ticket.AssigneeID != 0 {
		resp.AssigneeID = ticket.AssigneeID.String()
	}
	return resp
}
