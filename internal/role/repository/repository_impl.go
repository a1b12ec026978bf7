package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	roledomain "github.com/voltmesh/gridadmin/internal/role/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() roledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, role *roledomain.Role) error {
	return db.WithContext(ctx).Create(role).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, role *roledomain.Role) error {
	return db.WithContext(ctx).Exec(
		`UPDATE roles
		 SET name = ?, description = ?, level = ?, access_level = ?, updated_at = ?
		 WHERE id = ?`,
		role.Name,
		role.Description,
		role.Level,
		role.AccessLevel,
		role.UpdatedAt,
		role.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM role_permissions WHERE role_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM roles WHERE id = ?`, id).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*roledomain.Role, error) {
	var role roledomain.Role
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM roles WHERE id = ?`, id,
	).Scan(&role).Error
	if err != nil {
		return nil, err
	}
	if role.ID == 0 {
		return nil, nil
	}
	return &role, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*roledomain.Role, error) {
	// BINARY-exact match: the uniqueness rule is case-sensitive, so the
	// lookup must not fold case.
	var roles []roledomain.Role
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM roles WHERE name = ?`, name,
	).Scan(&roles).Error
	if err != nil {
		return nil, err
	}
	for i := range roles {
		if roles[i].Name == name {
			return &roles[i], nil
		}
	}
	return nil, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter roledomain.ListFilter) ([]roledomain.Role, int64, error) {
	query := db.WithContext(ctx).Model(&roledomain.Role{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.LocationID != "" {
		query = query.Where(
			"id IN (SELECT role_id FROM users WHERE location_id = ?)",
			filter.LocationID,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var roles []roledomain.Role
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

func (r *repo) CountUsers(ctx context.Context, db *gorm.DB, roleID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM users WHERE role_id = ?`, roleID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) FindPermissions(ctx context.Context, db *gorm.DB, roleID snowflake.ID) ([]roledomain.Permission, error) {
	var permissions []roledomain.Permission
	err := db.WithContext(ctx).Raw(
		`SELECT p.* FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = ?
		 ORDER BY p.name`,
		roleID,
	).Scan(&permissions).Error
	if err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *repo) FindPermissionsByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]roledomain.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var permissions []roledomain.Permission
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&permissions).Error
	if err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *repo) AllPermissions(ctx context.Context, db *gorm.DB) ([]roledomain.Permission, error) {
	var permissions []roledomain.Permission
	err := db.WithContext(ctx).
		Order("name").
		Find(&permissions).Error
	if err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *repo) DeletePermissionLinks(ctx context.Context, db *gorm.DB, roleID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM role_permissions WHERE role_id = ?`, roleID,
	).Error
}

func (r *repo) InsertPermissionLinks(ctx context.Context, db *gorm.DB, roleID snowflake.ID, permissionIDs []snowflake.ID) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	links := make([]roledomain.RolePermission, 0, len(permissionIDs))
	for _, permissionID := range permissionIDs {
		links = append(links, roledomain.RolePermission{
			RoleID:       roleID,
			PermissionID: permissionID,
		})
	}
	return db.WithContext(ctx).Create(&links).Error
}
