package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	ticketdomain "github.com/voltmesh/gridadmin/internal/ticket/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ticketdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ticket *ticketdomain.Ticket) error {
	return db.WithContext(ctx).Create(ticket).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, ticket *ticketdomain.Ticket) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tickets
		 SET category = ?, subject = ?, description = ?, priority = ?, status = ?,
		     assignee_id = ?, escalated = ?, escalated_at = ?, resolved_at = ?, updated_at = ?
		 WHERE id = ?`,
		ticket.Category,
		ticket.Subject,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.AssigneeID,
		ticket.Escalated,
		ticket.EscalatedAt,
		ticket.ResolvedAt,
		ticket.UpdatedAt,
		ticket.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM tickets WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ticketdomain.Ticket, error) {
	var ticket ticketdomain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM tickets WHERE id = ?`, id,
	).Scan(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.ID == 0 {
		return nil, nil
	}
	return &ticket, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter ticketdomain.ListFilter) ([]ticketdomain.Ticket, int64, error) {
	query := db.WithContext(ctx).Model(&ticketdomain.Ticket{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.AssigneeID != 0 {
		query = query.Where("assignee_id = ?", filter.AssigneeID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(ticket_number) LIKE ? OR LOWER(subject) LIKE ?",
			needle, needle,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var tickets []ticketdomain.Ticket
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}
