package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/voltmesh/gridadmin/internal/alert/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() alertdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, alert *alertdomain.Alert) error {
	return db.WithContext(ctx).Create(alert).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*alertdomain.Alert, error) {
	var alert alertdomain.Alert
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM alerts WHERE id = ?`, id,
	).Scan(&alert).Error
	if err != nil {
		return nil, err
	}
	if alert.ID == 0 {
		return nil, nil
	}
	return &alert, nil
}

func (r *repo) FindOpen(ctx context.Context, db *gorm.DB, alertType alertdomain.AlertType, accountID, meterID snowflake.ID) (*alertdomain.Alert, error) {
	var alert alertdomain.Alert
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM alerts
		 WHERE type = ? AND account_id = ? AND meter_id = ? AND resolved = ?
		 ORDER BY created_at DESC LIMIT 1`,
		alertType, accountID, meterID, false,
	).Scan(&alert).Error
	if err != nil {
		return nil, err
	}
	if alert.ID == 0 {
		return nil, nil
	}
	return &alert, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter alertdomain.ListFilter) ([]alertdomain.Alert, int64, error) {
	query := db.WithContext(ctx).Model(&alertdomain.Alert{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Resolved != nil {
		query = query.Where("resolved = ?", *filter.Resolved)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var alerts []alertdomain.Alert
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&alerts).Error
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func (r *repo) MarkResolved(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE alerts SET resolved = ?, resolved_at = ? WHERE id = ?`,
		true, at, id,
	).Error
}

func (r *repo) CountByTypeSince(ctx context.Context, db *gorm.DB, alertType alertdomain.AlertType, since, until time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM alerts WHERE type = ? AND created_at >= ? AND created_at < ?`,
		alertType, since, until,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
