package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() consumerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *consumerdomain.Consumer) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *consumerdomain.Consumer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE consumers
		 SET name = ?, email = ?, phone = ?, address = ?, location_id = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name,
		c.Email,
		c.Phone,
		c.Address,
		c.LocationID,
		c.Active,
		c.UpdatedAt,
		c.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM consumers WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*consumerdomain.Consumer, error) {
	var consumer consumerdomain.Consumer
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM consumers WHERE id = ?`, id,
	).Scan(&consumer).Error
	if err != nil {
		return nil, err
	}
	if consumer.ID == 0 {
		return nil, nil
	}
	return &consumer, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*consumerdomain.Consumer, error) {
	var consumer consumerdomain.Consumer
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM consumers WHERE consumer_number = ?`, number,
	).Scan(&consumer).Error
	if err != nil {
		return nil, err
	}
	if consumer.ID == 0 {
		return nil, nil
	}
	return &consumer, nil
}

// List applies the same predicate to the count and the page query so the
// pagination block always matches the returned rows.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter consumerdomain.ListFilter) ([]consumerdomain.Consumer, int64, error) {
	query := db.WithContext(ctx).Model(&consumerdomain.Consumer{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(consumer_number) LIKE ? OR LOWER(name) LIKE ?", like, like,
		)
	}
	if filter.LocationID != "" {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var consumers []consumerdomain.Consumer
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&consumers).Error
	if err != nil {
		return nil, 0, err
	}
	return consumers, total, nil
}
