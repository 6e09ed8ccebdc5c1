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

var ErrPlanHasSubscribers = errors.New("plan has subscriptions")

// PlanService manages the savings plan catalog.
type PlanService interface {
	CreatePlan(ctx context.Context, actor *Actor, request *PlanRequest) (*models.Plan, error)
	GetPlan(ctx context.Context, actor *Actor, planID primitive.ObjectID) (*models.Plan, error)
	UpdatePlan(ctx context.Context, actor *Actor, planID primitive.ObjectID, request *PlanRequest) (*models.Plan, error)
	DeletePlan(ctx context.Context, actor *Actor, planID primitive.ObjectID) error
	ListPlans(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Plan, int64, error)
	GetActivePlans(ctx context.Context) ([]*models.Plan, error)
}

type planService struct {
	planRepo         interfaces.PlanRepository
	subscriptionRepo interfaces.SubscriptionRepository
	auditLogRepo     interfaces.AuditLogRepository
	permissions      PermissionService
	logger           *logger.Logger
}

type PlanRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Image        string  `json:"image"`
	TenureMonths int     `json:"tenure_months" validate:"required,tenure_months"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
}

func NewPlanService(
	planRepo interfaces.PlanRepository,
	subscriptionRepo interfaces.SubscriptionRepository,
	auditLogRepo interfaces.AuditLogRepository,
	permissions PermissionService,
	logger *logger.Logger,
) PlanService {
	return &planService{
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		auditLogRepo:     auditLogRepo,
		permissions:      permissions,
		logger:           logger,
	}
}

func (s *planService) CreatePlan(ctx context.Context, actor *Actor, request *PlanRequest) (*models.Plan, error) {
	plan, err := s.buildPlan(actor, request)
	if err != nil {
		return nil, err
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionCreate, "plan", plan.ID.Hex(), nil, map[string]interface{}{
		"name":   plan.Name,
		"amount": plan.Amount,
	})

	return plan, nil
}

func (s *planService) GetPlan(ctx context.Context, actor *Actor, planID primitive.ObjectID) (*models.Plan, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManagePlans, nil) {
		return nil, ErrPermissionDenied
	}

	return s.planRepo.GetByID(ctx, planID)
}

func (s *planService) UpdatePlan(ctx context.Context, actor *Actor, planID primitive.ObjectID, request *PlanRequest) (*models.Plan, error) {
	plan, err := s.buildPlan(actor, request)
	if err != nil {
		return nil, err
	}

	if _, err := s.planRepo.GetByID(ctx, planID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":          plan.Name,
		"amount":        plan.Amount,
		"image":         plan.Image,
		"tenure_months": plan.TenureMonths,
		"description":   plan.Description,
		"status":        plan.Status,
	}
	if err := s.planRepo.Update(ctx, planID, updates); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionUpdate, "plan", planID.Hex(), nil, updates)

	return s.planRepo.GetByID(ctx, planID)
}

// DeletePlan refuses while subscriptions reference the plan; deactivate
// instead to stop new subscriptions.
func (s *planService) DeletePlan(ctx context.Context, actor *Actor, planID primitive.ObjectID) error {
	if !s.permissions.CanPerform(actor, models.PermissionManagePlans, nil) {
		return ErrPermissionDenied
	}

	subscribers, err := s.subscriptionRepo.CountByPlan(ctx, planID)
	if err != nil {
		return err
	}
	if subscribers > 0 {
		return ErrPlanHasSubscribers
	}

	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return err
	}

	s.audit(ctx, actor, models.AuditActionDelete, "plan", planID.Hex(), nil, nil)

	return nil
}

func (s *planService) ListPlans(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Plan, int64, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManagePlans, nil) {
		return nil, 0, ErrPermissionDenied
	}

	return s.planRepo.List(ctx, params)
}

func (s *planService) GetActivePlans(ctx context.Context) ([]*models.Plan, error) {
	return s.planRepo.GetActive(ctx)
}

func (s *planService) buildPlan(actor *Actor, request *PlanRequest) (*models.Plan, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !s.permissions.CanPerform(actor, models.PermissionManagePlans, nil) {
		return nil, ErrPermissionDenied
	}

	status := models.PlanStatusActive
	if request.Status != "" {
		status = models.PlanStatus(request.Status)
		if status != models.PlanStatusActive && status != models.PlanStatusInactive {
			return nil, fmt.Errorf("unknown plan status %q", request.Status)
		}
	}

	return &models.Plan{
		Name:         request.Name,
		Amount:       request.Amount,
		Image:        request.Image,
		TenureMonths: request.TenureMonths,
		Description:  request.Description,
		Status:       status,
	}, nil
}

func (s *planService) audit(ctx context.Context, actor *Actor, action models.AuditAction, resource, resourceID string, oldValues, newValues map[string]interface{}) {
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
