package services

import (
	"context"
	"errors"
	"fmt"

	"coopsave/internal/models"
	"coopsave/internal/repositories/interfaces"
	"coopsave/internal/utils"
	"coopsave/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrRoleNameTaken     = errors.New("role name already in use")
	ErrRoleHasHolders    = errors.New("role is assigned to admins")
	ErrUnknownPermission = errors.New("unknown permission")
)

// RoleService manages the role catalog. Permission lists are validated
// against the closed enum; a write carrying an unknown permission string is
// rejected rather than stored.
type RoleService interface {
	CreateRole(ctx context.Context, actor *Actor, request *RoleRequest) (*models.Role, error)
	GetRole(ctx context.Context, actor *Actor, roleID primitive.ObjectID) (*models.Role, error)
	UpdateRole(ctx context.Context, actor *Actor, roleID primitive.ObjectID, request *RoleRequest) (*models.Role, error)
	DeleteRole(ctx context.Context, actor *Actor, roleID primitive.ObjectID) error
	ListRoles(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Role, int64, error)
	ListPermissions(actor *Actor) []models.Permission
}

type roleService struct {
	roleRepo     interfaces.RoleRepository
	adminRepo    interfaces.AdminRepository
	branchRepo   interfaces.BranchRepository
	auditLogRepo interfaces.AuditLogRepository
	permissions  PermissionService
	logger       *logger.Logger
}

type RoleRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=50"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
	RoleType    string   `json:"role_type" validate:"required,role_type"`
	BranchID    string   `json:"branch_id"`
	SuperAdmin  bool     `json:"super_admin"`
}

func NewRoleService(
	roleRepo interfaces.RoleRepository,
	adminRepo interfaces.AdminRepository,
	branchRepo interfaces.BranchRepository,
	auditLogRepo interfaces.AuditLogRepository,
	permissions PermissionService,
	logger *logger.Logger,
) RoleService {
	return &roleService{
		roleRepo:     roleRepo,
		adminRepo:    adminRepo,
		branchRepo:   branchRepo,
		auditLogRepo: auditLogRepo,
		permissions:  permissions,
		logger:       logger,
	}
}

func (s *roleService) CreateRole(ctx context.Context, actor *Actor, request *RoleRequest) (*models.Role, error) {
	role, err := s.buildRole(ctx, actor, request)
	if err != nil {
		return nil, err
	}

	if _, err := s.roleRepo.GetByName(ctx, role.Name); err == nil {
		return nil, ErrRoleNameTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionCreate, "role", role.ID.Hex(), nil, map[string]interface{}{
		"name": role.Name,
	})

	return role, nil
}

func (s *roleService) GetRole(ctx context.Context, actor *Actor, roleID primitive.ObjectID) (*models.Role, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManageRoles, nil) {
		return nil, ErrPermissionDenied
	}

	return s.roleRepo.GetByID(ctx, roleID)
}

func (s *roleService) UpdateRole(ctx context.Context, actor *Actor, roleID primitive.ObjectID, request *RoleRequest) (*models.Role, error) {
	role, err := s.buildRole(ctx, actor, request)
	if err != nil {
		return nil, err
	}

	existing, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	if existing.Name != role.Name {
		if _, err := s.roleRepo.GetByName(ctx, role.Name); err == nil {
			return nil, ErrRoleNameTaken
		} else if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"name":        role.Name,
		"permissions": role.Permissions,
		"role_type":   role.RoleType,
		"branch_id":   role.BranchID,
		"super_admin": role.SuperAdmin,
	}
	if err := s.roleRepo.Update(ctx, roleID, updates); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionUpdate, "role", roleID.Hex(),
		map[string]interface{}{"permissions": existing.Permissions},
		map[string]interface{}{"permissions": role.Permissions},
	)

	return s.roleRepo.GetByID(ctx, roleID)
}

// DeleteRole refuses while any admin still holds the role. Reassign the
// holders first.
func (s *roleService) DeleteRole(ctx context.Context, actor *Actor, roleID primitive.ObjectID) error {
	if !s.permissions.CanPerform(actor, models.PermissionManageRoles, nil) {
		return ErrPermissionDenied
	}

	holders, err := s.adminRepo.CountByRole(ctx, roleID)
	if err != nil {
		return err
	}
	if holders > 0 {
		return ErrRoleHasHolders
	}

	if err := s.roleRepo.Delete(ctx, roleID); err != nil {
		return err
	}

	s.audit(ctx, actor, models.AuditActionDelete, "role", roleID.Hex(), nil, nil)

	return nil
}

func (s *roleService) ListRoles(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Role, int64, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManageRoles, nil) {
		return nil, 0, ErrPermissionDenied
	}

	return s.roleRepo.List(ctx, params)
}

// ListPermissions feeds the role editor. The sentinel is excluded; super
// admin is a flag, not a grantable permission.
func (s *roleService) ListPermissions(actor *Actor) []models.Permission {
	if !s.permissions.CanPerform(actor, models.PermissionManageRoles, nil) {
		return nil
	}

	return models.AllPermissions
}

func (s *roleService) buildRole(ctx context.Context, actor *Actor, request *RoleRequest) (*models.Role, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageRoles, nil) {
		return nil, ErrPermissionDenied
	}

	// Only a super admin may mint another super-admin role.
	if request.SuperAdmin && !actor.SuperAdmin {
		return nil, ErrPermissionDenied
	}

	permissions := make(models.PermissionSet, 0, len(request.Permissions))
	for _, raw := range request.Permissions {
		permission := models.Permission(raw)
		if permission == models.PermissionAll || !models.IsValidPermission(permission) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPermission, raw)
		}
		permissions = append(permissions, permission)
	}

	role := &models.Role{
		Name:        request.Name,
		Permissions: permissions,
		RoleType:    models.RoleType(request.RoleType),
		SuperAdmin:  request.SuperAdmin,
	}

	if request.BranchID != "" {
		branchID, err := primitive.ObjectIDFromHex(request.BranchID)
		if err != nil {
			return nil, fmt.Errorf("invalid branch id: %w", err)
		}
		if _, err := s.branchRepo.GetByID(ctx, branchID); err != nil {
			return nil, err
		}
		role.BranchID = &branchID
	}

	return role, nil
}

func (s *roleService) audit(ctx context.Context, actor *Actor, action models.AuditAction, resource, resourceID string, oldValues, newValues map[string]interface{}) {
	entry := &models.AuditLog{
		AdminID:    &actor.AdminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}
	if err := s.auditLogRepo.Create(ctx, entry); err != nil {
		s.logger.WithAdminID(actor.AdminID).WithError(err).Warn("failed to write audit entry")
	}
}
