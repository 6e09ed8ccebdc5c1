package services

import (
	"context"
	"errors"
	"fmt"

	"coopsave/internal/models"
	"coopsave/internal/repositories/interfaces"
	"coopsave/internal/utils"
	"coopsave/pkg/authn"
	"coopsave/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrEmailTaken = errors.New("email already registered")

// AdminService manages the staff directory. Creating an admin also creates
// their sign-in credential at the identity provider.
type AdminService interface {
	CreateAdmin(ctx context.Context, actor *Actor, request *CreateAdminRequest) (*models.Admin, error)
	GetAdmin(ctx context.Context, actor *Actor, adminID primitive.ObjectID) (*models.Admin, error)
	UpdateAdmin(ctx context.Context, actor *Actor, adminID primitive.ObjectID, request *UpdateAdminRequest) (*models.Admin, error)
	DeactivateAdmin(ctx context.Context, actor *Actor, adminID primitive.ObjectID) error
	ListAdmins(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Admin, int64, error)
}

type adminService struct {
	adminRepo    interfaces.AdminRepository
	roleRepo     interfaces.RoleRepository
	branchRepo   interfaces.BranchRepository
	auditLogRepo interfaces.AuditLogRepository
	permissions  PermissionService
	authProvider authn.AuthProvider
	logger       *logger.Logger
}

type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	RoleID   string `json:"role_id" validate:"required"`
	BranchID string `json:"branch_id"`
}

type UpdateAdminRequest struct {
	Phone    string `json:"phone" validate:"omitempty,phone"`
	RoleID   string `json:"role_id"`
	BranchID string `json:"branch_id"`
	Status   string `json:"status"`
}

func NewAdminService(
	adminRepo interfaces.AdminRepository,
	roleRepo interfaces.RoleRepository,
	branchRepo interfaces.BranchRepository,
	auditLogRepo interfaces.AuditLogRepository,
	permissions PermissionService,
	authProvider authn.AuthProvider,
	logger *logger.Logger,
) AdminService {
	return &adminService{
		adminRepo:    adminRepo,
		roleRepo:     roleRepo,
		branchRepo:   branchRepo,
		auditLogRepo: auditLogRepo,
		permissions:  permissions,
		authProvider: authProvider,
		logger:       logger,
	}
}

func (s *adminService) CreateAdmin(ctx context.Context, actor *Actor, request *CreateAdminRequest) (*models.Admin, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	roleID, err := primitive.ObjectIDFromHex(request.RoleID)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	var branchID *primitive.ObjectID
	if request.BranchID != "" {
		id, err := primitive.ObjectIDFromHex(request.BranchID)
		if err != nil {
			return nil, fmt.Errorf("invalid branch id: %w", err)
		}
		branchID = &id
	}

	if !s.permissions.CanPerform(actor, models.PermissionCreateAdmin, &Target{BranchID: branchID}) {
		return nil, ErrPermissionDenied
	}

	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		return nil, err
	}
	if branchID != nil {
		if _, err := s.branchRepo.GetByID(ctx, *branchID); err != nil {
			return nil, err
		}
	}

	if _, err := s.adminRepo.GetByEmail(ctx, request.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	phone := utils.NormalizePhone(request.Phone)
	tempPassword := utils.GenerateRandomPassword(utils.GeneratedPasswordLength)

	identity, err := s.authProvider.CreateCredential(ctx, &authn.CreateCredentialRequest{
		Phone:    phone,
		Email:    request.Email,
		Password: tempPassword,
	})
	if err != nil {
		if !errors.Is(err, authn.ErrAlreadyExists) {
			return nil, fmt.Errorf("failed to create credential: %w", err)
		}
		identity, err = s.authProvider.LookupByPhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("failed to look up existing credential: %w", err)
		}
	}

	admin := &models.Admin{
		Email:    request.Email,
		Phone:    phone,
		RoleID:   &roleID,
		BranchID: branchID,
		Status:   models.AdminStatusActive,
		UID:      identity.UID,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionCreate, "admin", admin.ID.Hex(), nil, map[string]interface{}{
		"email":   admin.Email,
		"role_id": roleID.Hex(),
	})

	return admin, nil
}

func (s *adminService) GetAdmin(ctx context.Context, actor *Actor, adminID primitive.ObjectID) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageAdmins, &Target{BranchID: admin.BranchID}) {
		return nil, ErrPermissionDenied
	}

	return admin, nil
}

func (s *adminService) UpdateAdmin(ctx context.Context, actor *Actor, adminID primitive.ObjectID, request *UpdateAdminRequest) (*models.Admin, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageAdmins, &Target{BranchID: admin.BranchID}) {
		return nil, ErrPermissionDenied
	}

	updates := map[string]interface{}{}
	if request.Phone != "" {
		updates["phone"] = utils.NormalizePhone(request.Phone)
	}
	if request.RoleID != "" {
		roleID, err := primitive.ObjectIDFromHex(request.RoleID)
		if err != nil {
			return nil, fmt.Errorf("invalid role id: %w", err)
		}
		if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
			return nil, err
		}
		updates["role_id"] = roleID
	}
	if request.BranchID != "" {
		branchID, err := primitive.ObjectIDFromHex(request.BranchID)
		if err != nil {
			return nil, fmt.Errorf("invalid branch id: %w", err)
		}
		if _, err := s.branchRepo.GetByID(ctx, branchID); err != nil {
			return nil, err
		}
		updates["branch_id"] = branchID
	}
	if request.Status != "" {
		status := models.AdminStatus(request.Status)
		switch status {
		case models.AdminStatusActive, models.AdminStatusInactive, models.AdminStatusPending:
		default:
			return nil, fmt.Errorf("unknown admin status %q", request.Status)
		}
		updates["status"] = status
	}

	if len(updates) == 0 {
		return admin, nil
	}

	if err := s.adminRepo.Update(ctx, adminID, updates); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionUpdate, "admin", adminID.Hex(), nil, updates)

	return s.adminRepo.GetByID(ctx, adminID)
}

// DeactivateAdmin revokes dashboard access without deleting the record.
// User documents keep referencing the admin id, so assignments stay intact.
func (s *adminService) DeactivateAdmin(ctx context.Context, actor *Actor, adminID primitive.ObjectID) error {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageAdmins, &Target{BranchID: admin.BranchID}) {
		return ErrPermissionDenied
	}

	if err := s.adminRepo.Update(ctx, adminID, map[string]interface{}{"status": models.AdminStatusInactive}); err != nil {
		return err
	}

	if admin.UID != "" {
		if err := s.authProvider.DisableCredential(ctx, admin.UID); err != nil {
			s.logger.WithAdminID(adminID).WithError(err).Warn("failed to disable admin credential")
		}
	}

	s.audit(ctx, actor, models.AuditActionUpdate, "admin", adminID.Hex(),
		map[string]interface{}{"status": string(admin.Status)},
		map[string]interface{}{"status": string(models.AdminStatusInactive)},
	)

	return nil
}

func (s *adminService) ListAdmins(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Admin, int64, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManageAdmins, nil) {
		return nil, 0, ErrPermissionDenied
	}

	if actor.RoleType == models.RoleTypeBranch && actor.BranchID != nil {
		return s.adminRepo.GetByBranch(ctx, *actor.BranchID, params)
	}

	return s.adminRepo.List(ctx, params)
}

func (s *adminService) audit(ctx context.Context, actor *Actor, action models.AuditAction, resource, resourceID string, oldValues, newValues map[string]interface{}) {
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
