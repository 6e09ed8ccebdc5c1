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
	ErrBranchNameTaken = errors.New("branch name already in use")
	ErrBranchInUse     = errors.New("branch still has members")
)

type BranchService interface {
	CreateBranch(ctx context.Context, actor *Actor, request *BranchRequest) (*models.Branch, error)
	GetBranch(ctx context.Context, actor *Actor, branchID primitive.ObjectID) (*models.Branch, error)
	UpdateBranch(ctx context.Context, actor *Actor, branchID primitive.ObjectID, request *BranchRequest) (*models.Branch, error)
	DeleteBranch(ctx context.Context, actor *Actor, branchID primitive.ObjectID) error
	ListBranches(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Branch, int64, error)

	// GetAllBranches backs the public registration form's branch picker.
	GetAllBranches(ctx context.Context) ([]*models.Branch, error)
}

type branchService struct {
	branchRepo   interfaces.BranchRepository
	userRepo     interfaces.UserRepository
	adminRepo    interfaces.AdminRepository
	auditLogRepo interfaces.AuditLogRepository
	permissions  PermissionService
	logger       *logger.Logger
}

type BranchRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func NewBranchService(
	branchRepo interfaces.BranchRepository,
	userRepo interfaces.UserRepository,
	adminRepo interfaces.AdminRepository,
	auditLogRepo interfaces.AuditLogRepository,
	permissions PermissionService,
	logger *logger.Logger,
) BranchService {
	return &branchService{
		branchRepo:   branchRepo,
		userRepo:     userRepo,
		adminRepo:    adminRepo,
		auditLogRepo: auditLogRepo,
		permissions:  permissions,
		logger:       logger,
	}
}

func (s *branchService) CreateBranch(ctx context.Context, actor *Actor, request *BranchRequest) (*models.Branch, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !s.permissions.CanPerform(actor, models.PermissionManageBranches, nil) {
		return nil, ErrPermissionDenied
	}

	if _, err := s.branchRepo.GetByName(ctx, request.Name); err == nil {
		return nil, ErrBranchNameTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	branch := &models.Branch{Name: request.Name}
	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionCreate, "branch", branch.ID.Hex(), nil, map[string]interface{}{
		"name": branch.Name,
	})

	return branch, nil
}

func (s *branchService) GetBranch(ctx context.Context, actor *Actor, branchID primitive.ObjectID) (*models.Branch, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManageBranches, &Target{BranchID: &branchID}) {
		return nil, ErrPermissionDenied
	}

	return s.branchRepo.GetByID(ctx, branchID)
}

func (s *branchService) UpdateBranch(ctx context.Context, actor *Actor, branchID primitive.ObjectID, request *BranchRequest) (*models.Branch, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !s.permissions.CanPerform(actor, models.PermissionManageBranches, &Target{BranchID: &branchID}) {
		return nil, ErrPermissionDenied
	}

	existing, err := s.branchRepo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}

	if existing.Name != request.Name {
		if _, err := s.branchRepo.GetByName(ctx, request.Name); err == nil {
			return nil, ErrBranchNameTaken
		} else if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, err
		}
	}

	if err := s.branchRepo.Update(ctx, branchID, map[string]interface{}{"name": request.Name}); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionUpdate, "branch", branchID.Hex(),
		map[string]interface{}{"name": existing.Name},
		map[string]interface{}{"name": request.Name},
	)

	return s.branchRepo.GetByID(ctx, branchID)
}

// DeleteBranch refuses while users or admins still belong to the branch.
func (s *branchService) DeleteBranch(ctx context.Context, actor *Actor, branchID primitive.ObjectID) error {
	if !s.permissions.CanPerform(actor, models.PermissionManageBranches, nil) {
		return ErrPermissionDenied
	}

	users, err := s.userRepo.CountByBranch(ctx, branchID)
	if err != nil {
		return err
	}
	admins, err := s.adminRepo.CountByBranch(ctx, branchID)
	if err != nil {
		return err
	}
	if users > 0 || admins > 0 {
		return ErrBranchInUse
	}

	if err := s.branchRepo.Delete(ctx, branchID); err != nil {
		return err
	}

	s.audit(ctx, actor, models.AuditActionDelete, "branch", branchID.Hex(), nil, nil)

	return nil
}

func (s *branchService) ListBranches(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Branch, int64, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManageBranches, nil) {
		return nil, 0, ErrPermissionDenied
	}

	return s.branchRepo.List(ctx, params)
}

func (s *branchService) GetAllBranches(ctx context.Context) ([]*models.Branch, error) {
	return s.branchRepo.GetAll(ctx)
}

func (s *branchService) audit(ctx context.Context, actor *Actor, action models.AuditAction, resource, resourceID string, oldValues, newValues map[string]interface{}) {
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
