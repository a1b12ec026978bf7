package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/voltmesh/gridadmin/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() notificationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *notificationdomain.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status notificationdomain.Status, deliveredAt *time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notifications SET status = ?, delivered_at = ? WHERE id = ?`,
		status, deliveredAt, id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*notificationdomain.Notification, error) {
	var notification notificationdomain.Notification
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM notifications WHERE id = ?`, id,
	).Scan(&notification).Error
	if err != nil {
		return nil, err
	}
	if notification.ID == 0 {
		return nil, nil
	}
	return &notification, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter notificationdomain.ListFilter) ([]notificationdomain.Notification, int64, error) {
	query := db.WithContext(ctx).Model(&notificationdomain.Notification{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var notifications []notificationdomain.Notification
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}
