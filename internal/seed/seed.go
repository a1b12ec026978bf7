// Package seed bootstraps reference data on a fresh database: the
// permission catalog and the built-in admin role. Seeding is idempotent and
// never overwrites operator edits.
package seed

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	roledomain "github.com/voltmesh/gridadmin/internal/role/domain"
)

// AdminRoleName is the role granted every permission at bootstrap.
const AdminRoleName = "admin"

type catalogEntry struct {
	name        string
	description string
}

// permissionCatalog is the full set of grantable capabilities. New entries
// are inserted on upgrade; removed entries stay until deleted by hand.
var permissionCatalog = []catalogEntry{
	{"consumers:read", "View consumers and their meters"},
	{"consumers:write", "Create and modify consumers"},
	{"meters:read", "View meters and readings"},
	{"meters:write", "Create and modify meters, record readings"},
	{"accounts:read", "View prepaid accounts and transactions"},
	{"accounts:write", "Recharge, record consumption, block and unblock accounts"},
	{"alerts:read", "View alerts"},
	{"alerts:resolve", "Resolve alerts"},
	{"roles:manage", "Create, modify and delete roles and their permissions"},
	{"tickets:read", "View tickets"},
	{"tickets:write", "Create, modify and escalate tickets"},
	{"notifications:read", "View notifications"},
	{"notifications:announce", "Broadcast announcements"},
	{"stats:read", "View the billing dashboard"},
}

// Run seeds the permission catalog and ensures the admin role holds every
// permission. Safe to call on every startup.
func Run(ctx context.Context, db *gorm.DB, node *snowflake.Node, log *zap.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms, err := ensurePermissions(tx, node)
		if err != nil {
			return err
		}
		if err := ensureAdminRole(tx, node, perms); err != nil {
			return err
		}
		log.Info("reference data seeded", zap.Int("permissions", len(perms)))
		return nil
	})
}

func ensurePermissions(tx *gorm.DB, node *snowflake.Node) ([]roledomain.Permission, error) {
	var existing []roledomain.Permission
	if err := tx.Find(&existing).Error; err != nil {
		return nil, err
	}

	known := make(map[string]roledomain.Permission, len(existing))
	for _, p := range existing {
		known[p.Name] = p
	}

	out := make([]roledomain.Permission, 0, len(permissionCatalog))
	for _, entry := range permissionCatalog {
		if p, ok := known[entry.name]; ok {
			out = append(out, p)
			continue
		}
		p := roledomain.Permission{
			ID:          node.Generate(),
			Name:        entry.name,
			Description: entry.description,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Create(&p).Error; err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func ensureAdminRole(tx *gorm.DB, node *snowflake.Node, perms []roledomain.Permission) error {
	var role roledomain.Role
	err := tx.Where("name = ?", AdminRoleName).First(&role).Error
	switch {
	case err == nil:
		// grants are only topped up for the built-in role, never for
		// operator-created ones
	case err == gorm.ErrRecordNotFound:
		role = roledomain.Role{
			ID:          node.Generate(),
			Name:        AdminRoleName,
			Description: "Built-in role with every permission",
			Level:       100,
			AccessLevel: "FULL",
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   time.Now().UTC(),
		}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
	default:
		return err
	}

	var granted []roledomain.RolePermission
	if err := tx.Where("role_id = ?", role.ID).Find(&granted).Error; err != nil {
		return err
	}
	has := make(map[snowflake.ID]struct{}, len(granted))
	for _, g := range granted {
		has[g.PermissionID] = struct{}{}
	}

	for _, p := range perms {
		if _, ok := has[p.ID]; ok {
			continue
		}
		link := roledomain.RolePermission{
			RoleID:       role.ID,
			PermissionID: p.ID,
			CreatedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

// Module seeds reference data during startup, after migrations have run.
var Module = fx.Module("seed",
	fx.Invoke(func(lc fx.Lifecycle, db *gorm.DB, node *snowflake.Node, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return Run(ctx, db, node, log)
			},
		})
	}),
)
