package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltmesh/gridadmin/internal/role/domain"
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
}

type roleService struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &roleService{
		db:    p.DB,
		log:   p.Log.Named("role.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *roleService) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrNameConflict
	}

	permissionIDs, err := parsePermissionIDs(req.Permissions)
	if err != nil {
		return nil, err
	}
	if err := s.checkPermissionsExist(ctx, permissionIDs); err != nil {
		return nil, err
	}

	role := &domain.Role{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Level:       req.Level,
		AccessLevel: strings.TrimSpace(req.AccessLevel),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, role); err != nil {
			return err
		}
		return s.repo.InsertPermissionLinks(ctx, tx, role.ID, permissionIDs)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameConflict
		}
		s.log.Error("create role", zap.Error(err))
		return nil, err
	}

	return s.buildResponse(ctx, role)
}

func (s *roleService) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page := req.Page.Normalize()

	roles, total, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Search:     req.Search,
		LocationID: strings.TrimSpace(req.LocationID),
		Page:       page,
	})
	if err != nil {
		s.log.Error("list roles", zap.Error(err))
		return nil, err
	}

	items := make([]domain.Response, 0, len(roles))
	for i := range roles {
		resp, err := s.buildResponse(ctx, &roles[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}

	return &domain.ListResponse{
		Roles:      items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *roleService) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	roleID, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	role, err := s.repo.FindByID(ctx, s.db, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}

	return s.buildResponse(ctx, role)
}

func (s *roleService) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	roleID, err := domain.ParseID(req.ID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	role, err := s.repo.FindByID(ctx, s.db, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		if name != role.Name {
			other, err := s.repo.FindByName(ctx, s.db, name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != role.ID {
				return nil, domain.ErrNameConflict
			}
			role.Name = name
		}
	}
	if req.Description != nil {
		role.Description = strings.TrimSpace(*req.Description)
	}
	if req.Level != nil {
		role.Level = *req.Level
	}
	if req.AccessLevel != nil {
		role.AccessLevel = strings.TrimSpace(*req.AccessLevel)
	}

	role.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, role); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameConflict
		}
		s.log.Error("update role", zap.Error(err))
		return nil, err
	}

	return s.buildResponse(ctx, role)
}

func (s *roleService) Delete(ctx context.Context, id string) error {
	roleID, err := domain.ParseID(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	role, err := s.repo.FindByID(ctx, s.db, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.ErrNotFound
	}

	users, err := s.repo.CountUsers(ctx, s.db, roleID)
	if err != nil {
		return err
	}
	if users > 0 {
		return domain.ErrRoleInUse
	}

	return s.repo.Delete(ctx, s.db, roleID)
}

func (s *roleService) ReplacePermissions(ctx context.Context, id string, permissions []string) (*domain.Response, error) {
	roleID, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	role, err := s.repo.FindByID(ctx, s.db, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}

	permissionIDs, err := parsePermissionIDs(permissions)
	if err != nil {
		return nil, err
	}
	if err := s.checkPermissionsExist(ctx, permissionIDs); err != nil {
		return nil, err
	}

	// Delete-then-insert runs inside one transaction so a reader never sees
	// the intermediate empty set.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeletePermissionLinks(ctx, tx, roleID); err != nil {
			return err
		}
		return s.repo.InsertPermissionLinks(ctx, tx, roleID, permissionIDs)
	})
	if err != nil {
		s.log.Error("replace role permissions", zap.Error(err))
		return nil, err
	}

	return s.buildResponse(ctx, role)
}

func (s *roleService) ListPermissions(ctx context.Context) ([]domain.PermissionResponse, error) {
	permissions, err := s.repo.AllPermissions(ctx, s.db)
	if err != nil {
		s.log.Error("list permissions", zap.Error(err))
		return nil, err
	}
	return toPermissionResponses(permissions), nil
}

func (s *roleService) checkPermissionsExist(ctx context.Context, ids []snowflake.ID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.repo.FindPermissionsByIDs(ctx, s.db, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return domain.ErrUnknownPermission
	}
	return nil
}

func (s *roleService) buildResponse(ctx context.Context, role *domain.Role) (*domain.Response, error) {
	permissions, err := s.repo.FindPermissions(ctx, s.db, role.ID)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.CountUsers(ctx, s.db, role.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Response{
		ID:          role.ID.String(),
		Name:        role.Name,
		Description: role.Description,
		Level:       role.Level,
		AccessLevel: role.AccessLevel,
		UserCount:   users,
		Permissions: toPermissionResponses(permissions),
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}, nil
}

func parsePermissionIDs(values []string) ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(values))
	seen := make(map[snowflake.ID]struct{}, len(values))
	for _, value := range values {
		id, err := domain.ParseID(strings.TrimSpace(value))
		if err != nil {
			return nil, domain.ErrUnknownPermission
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func toPermissionResponses(permissions []domain.Permission) []domain.PermissionResponse {
	items := make([]domain.PermissionResponse, 0, len(permissions))
	for i := range permissions {
		items = append(items, domain.PermissionResponse{
			ID:          permissions[i].ID.String(),
			Name:        permissions[i].Name,
			Description: permissions[i].Description,
		})
	}
	return items
}
