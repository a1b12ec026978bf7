package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	meterdomain "github.com/voltmesh/gridadmin/internal/meter/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() meterdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *meterdomain.Meter) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, m *meterdomain.Meter) error {
	return db.WithContext(ctx).Exec(
		`UPDATE meters
		 SET consumer_id = ?, dtr_name = ?, feeder_name = ?, meter_type = ?, status = ?,
		     last_reading_kwh = ?, last_reading_at = ?, updated_at = ?
		 WHERE id = ?`,
		m.ConsumerID,
		m.DTRName,
		m.FeederName,
		m.MeterType,
		m.Status,
		m.LastReadingKW,
		m.LastReadingAt,
		m.UpdatedAt,
		m.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM meters WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM meters WHERE id = ?`, id,
	).Scan(&meter).Error
	if err != nil {
		return nil, err
	}
	if meter.ID == 0 {
		return nil, nil
	}
	return &meter, nil
}

func (r *repo) FindBySerial(ctx context.Context, db *gorm.DB, serial string) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM meters WHERE serial_number = ?`, serial,
	).Scan(&meter).Error
	if err != nil {
		return nil, err
	}
	if meter.ID == 0 {
		return nil, nil
	}
	return &meter, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter meterdomain.ListFilter) ([]meterdomain.Meter, int64, error) {
	query := db.WithContext(ctx).Model(&meterdomain.Meter{})
	if serial := strings.TrimSpace(filter.Serial); serial != "" {
		query = query.Where("LOWER(serial_number) LIKE ?", "%"+strings.ToLower(serial)+"%")
	}
	if filter.DTRName != "" {
		query = query.Where("dtr_name = ?", filter.DTRName)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var meters []meterdomain.Meter
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&meters).Error
	if err != nil {
		return nil, 0, err
	}
	return meters, total, nil
}

func (r *repo) InsertReading(ctx context.Context, db *gorm.DB, reading *meterdomain.MeterReading) error {
	return db.WithContext(ctx).Create(reading).Error
}
