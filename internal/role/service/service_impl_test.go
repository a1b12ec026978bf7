package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltmesh/gridadmin/internal/role/domain"
	"github.com/voltmesh/gridadmin/internal/role/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&domain.Role{},
		&domain.Permission{},
		&domain.RolePermission{},
		&domain.User{},
	))
	return gdb
}

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	gdb := openTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, gdb, node
}

func seedPermissions(t *testing.T, gdb *gorm.DB, node *snowflake.Node, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, name := range names {
		p := domain.Permission{ID: node.Generate(), Name: name}
		require.NoError(t, gdb.Create(&p).Error)
		ids = append(ids, p.ID.String())
	}
	return ids
}

func TestRoleNameConflictIsCaseSensitive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Admin"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Admin"})
	assert.ErrorIs(t, err, domain.ErrNameConflict)

	// Same letters, different case: a distinct role.
	created, err := svc.Create(ctx, domain.CreateRequest{Name: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", created.Name)
}

func TestRoleDeleteGuardedByUsers(t *testing.T) {
	svc, gdb, node := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "operator"})
	require.NoError(t, err)
	roleID, err := domain.ParseID(created.ID)
	require.NoError(t, err)

	user := domain.User{ID: node.Generate(), Username: "jsmith", RoleID: roleID}
	require.NoError(t, gdb.Create(&user).Error)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrRoleInUse)

	// Nothing mutated on the failed delete.
	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "operator", fetched.Name)

	require.NoError(t, gdb.Delete(&user).Error)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplacePermissionsSwapsTheWholeSet(t *testing.T) {
	svc, gdb, node := newTestService(t)
	ctx := context.Background()

	ids := seedPermissions(t, gdb, node, "consumers:read", "consumers:write", "meters:read")

	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:        "field-ops",
		Permissions: []string{ids[0], ids[1]},
	})
	require.NoError(t, err)
	require.Len(t, created.Permissions, 2)

	// Replacement is exact: old grants gone, only the new set remains.
	updated, err := svc.ReplacePermissions(ctx, created.ID, []string{ids[2]})
	require.NoError(t, err)
	require.Len(t, updated.Permissions, 1)
	assert.Equal(t, "meters:read", updated.Permissions[0].Name)

	// Empty list clears the set entirely.
	cleared, err := svc.ReplacePermissions(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Permissions)
}

func TestReplacePermissionsRejectsUnknownIDs(t *testing.T) {
	svc, gdb, node := newTestService(t)
	ctx := context.Background()

	ids := seedPermissions(t, gdb, node, "alerts:read")
	created, err := svc.Create(ctx, domain.CreateRequest{Name: "viewer", Permissions: ids})
	require.NoError(t, err)

	_, err = svc.ReplacePermissions(ctx, created.ID, []string{node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrUnknownPermission)

	// The failed replacement left the original grants untouched.
	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Permissions, 1)
	assert.Equal(t, "alerts:read", fetched.Permissions[0].Name)
}
