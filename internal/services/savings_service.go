package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coopsave/internal/models"
	"coopsave/internal/repositories/interfaces"
	"coopsave/internal/utils"
	"coopsave/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPermissionDenied       = errors.New(utils.ErrForbidden)
	ErrSubscriptionBlocked    = errors.New(utils.ErrSubscriptionExists)
	ErrAlreadyResolved        = errors.New(utils.ErrTransactionResolved)
	ErrUserNotActive          = errors.New(utils.ErrAccountRestricted)
	ErrInsufficientBalance    = errors.New(utils.ErrInsufficientBalance)
	ErrPlanNotActive          = errors.New("plan is not active")
	ErrNoApprovedSubscription = errors.New("no approved subscription for plan")
)

// SavingsService drives the subscription and transaction workflows. Every
// mutation is permission checked against the acting admin; balances are
// always computed from the approved transaction history, never stored.
type SavingsService interface {
	Subscribe(ctx context.Context, actor *Actor, request *SubscribeRequest) (*models.Subscription, error)
	ResolveSubscription(ctx context.Context, actor *Actor, subscriptionID primitive.ObjectID, approve bool) (*models.Subscription, error)
	GetUserSubscriptions(ctx context.Context, actor *Actor, userID primitive.ObjectID) ([]*SubscriptionDetail, error)

	PlaceTransaction(ctx context.Context, actor *Actor, request *PlaceTransactionRequest) (*models.Transaction, error)
	ResolveTransaction(ctx context.Context, actor *Actor, transactionID primitive.ObjectID, approve bool) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, actor *Actor, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	ListTransactionsByStatus(ctx context.Context, actor *Actor, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error)

	GetPlanBalance(ctx context.Context, actor *Actor, userID, planID primitive.ObjectID) (float64, error)
}

type savingsService struct {
	subscriptionRepo interfaces.SubscriptionRepository
	transactionRepo  interfaces.TransactionRepository
	userRepo         interfaces.UserRepository
	planRepo         interfaces.PlanRepository
	auditLogRepo     interfaces.AuditLogRepository
	permissions      PermissionService
	notifications    NotificationService
	logger           *logger.Logger
}

type SubscribeRequest struct {
	UserID primitive.ObjectID `json:"user_id" validate:"required"`
	PlanID primitive.ObjectID `json:"plan_id" validate:"required"`
}

type PlaceTransactionRequest struct {
	UserID primitive.ObjectID     `json:"user_id" validate:"required"`
	PlanID primitive.ObjectID     `json:"plan_id" validate:"required"`
	Type   models.TransactionType `json:"type" validate:"required"`
	Amount float64                `json:"amount" validate:"required,gt=0"`
}

type SubscriptionDetail struct {
	Subscription *models.Subscription `json:"subscription"`
	Plan         *models.Plan         `json:"plan"`
	Balance      float64              `json:"balance"`
}

func NewSavingsService(
	subscriptionRepo interfaces.SubscriptionRepository,
	transactionRepo interfaces.TransactionRepository,
	userRepo interfaces.UserRepository,
	planRepo interfaces.PlanRepository,
	auditLogRepo interfaces.AuditLogRepository,
	permissions PermissionService,
	notifications NotificationService,
	logger *logger.Logger,
) SavingsService {
	return &savingsService{
		subscriptionRepo: subscriptionRepo,
		transactionRepo:  transactionRepo,
		userRepo:         userRepo,
		planRepo:         planRepo,
		auditLogRepo:     auditLogRepo,
		permissions:      permissions,
		notifications:    notifications,
		logger:           logger,
	}
}

func (s *savingsService) Subscribe(ctx context.Context, actor *Actor, request *SubscribeRequest) (*models.Subscription, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionSubscribePlan, &Target{User: user}) {
		return nil, ErrPermissionDenied
	}
	if user.Status != models.UserStatusActive {
		return nil, ErrUserNotActive
	}

	plan, err := s.planRepo.GetByID(ctx, request.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.PlanStatusActive {
		return nil, ErrPlanNotActive
	}

	// One live subscription per user and plan. Only a declined record
	// frees the slot for a new request.
	_, err = s.subscriptionRepo.GetBlocking(ctx, user.ID, plan.ID)
	if err == nil {
		return nil, ErrSubscriptionBlocked
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	sub := &models.Subscription{
		UserID: user.ID,
		PlanID: plan.ID,
	}
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionCreate, "subscription", sub.ID.Hex(), nil, map[string]interface{}{
		"user_id": user.ID.Hex(),
		"plan_id": plan.ID.Hex(),
	})
	s.logger.LogWorkflowEvent(user.ID, utils.EventSubscriptionRequested, map[string]interface{}{
		"plan_id": plan.ID.Hex(),
	})

	return sub, nil
}

// ResolveSubscription approves or declines a pending request. Approval
// stamps the start date and an end date derived from the plan tenure.
func (s *savingsService) ResolveSubscription(ctx context.Context, actor *Actor, subscriptionID primitive.ObjectID, approve bool) (*models.Subscription, error) {
	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionApprovePlan, &Target{User: user}) {
		return nil, ErrPermissionDenied
	}

	status := models.SubscriptionStatusDeclined
	updates := map[string]interface{}{}
	if approve {
		plan, err := s.planRepo.GetByID(ctx, sub.PlanID)
		if err != nil {
			return nil, err
		}

		status = models.SubscriptionStatusApproved
		start := time.Now()
		end := start.AddDate(0, plan.TenureMonths, 0)
		updates["start_date"] = start
		updates["end_date"] = &end
	}

	resolved, err := s.subscriptionRepo.ResolveIfPending(ctx, subscriptionID, status, updates)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}

	action := models.AuditActionApprove
	if !approve {
		action = models.AuditActionDecline
	}
	s.audit(ctx, actor, action, "subscription", resolved.ID.Hex(), nil, map[string]interface{}{
		"status": string(resolved.Status),
	})
	s.logger.LogWorkflowEvent(resolved.UserID, utils.EventSubscriptionResolved, map[string]interface{}{
		"subscription_id": resolved.ID.Hex(),
		"status":          string(resolved.Status),
	})
	s.notifications.NotifySubscriptionResolved(ctx, user, resolved)

	return resolved, nil
}

func (s *savingsService) GetUserSubscriptions(ctx context.Context, actor *Actor, userID primitive.ObjectID) ([]*SubscriptionDetail, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}) {
		return nil, ErrPermissionDenied
	}

	subs, err := s.subscriptionRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]*SubscriptionDetail, 0, len(subs))
	for _, sub := range subs {
		plan, err := s.planRepo.GetByID(ctx, sub.PlanID)
		if err != nil {
			// A deleted plan leaves the subscription visible with no plan
			// detail rather than hiding the row.
			if errors.Is(err, interfaces.ErrNotFound) {
				details = append(details, &SubscriptionDetail{Subscription: sub})
				continue
			}
			return nil, err
		}

		balance, err := s.planBalance(ctx, userID, sub.PlanID)
		if err != nil {
			return nil, err
		}

		details = append(details, &SubscriptionDetail{
			Subscription: sub,
			Plan:         plan,
			Balance:      balance,
		})
	}

	return details, nil
}

func (s *savingsService) PlaceTransaction(ctx context.Context, actor *Actor, request *PlaceTransactionRequest) (*models.Transaction, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if request.Type != models.TransactionTypeDeposit && request.Type != models.TransactionTypeWithdraw {
		return nil, fmt.Errorf("unknown transaction type %q", request.Type)
	}

	user, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, err
	}

	placePermission := models.PermissionPlaceDeposit
	if request.Type == models.TransactionTypeWithdraw {
		placePermission = models.PermissionPlaceWithdrawal
	}
	if !s.permissions.CanPerform(actor, placePermission, &Target{User: user}) {
		return nil, ErrPermissionDenied
	}
	if user.Status != models.UserStatusActive {
		return nil, ErrUserNotActive
	}

	sub, err := s.subscriptionRepo.GetBlocking(ctx, request.UserID, request.PlanID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNoApprovedSubscription
		}
		return nil, err
	}
	if sub.Status != models.SubscriptionStatusApproved {
		return nil, ErrNoApprovedSubscription
	}

	// A withdrawal may not exceed the approved balance at placement time.
	// Approval re-checks because pending withdrawals do not reserve funds.
	if request.Type == models.TransactionTypeWithdraw {
		balance, err := s.planBalance(ctx, request.UserID, request.PlanID)
		if err != nil {
			return nil, err
		}
		if request.Amount > balance {
			return nil, ErrInsufficientBalance
		}
	}

	txn := &models.Transaction{
		UserID: request.UserID,
		PlanID: request.PlanID,
		Type:   request.Type,
		Amount: request.Amount,
	}
	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionCreate, "transaction", txn.ID.Hex(), nil, map[string]interface{}{
		"type":   string(txn.Type),
		"amount": txn.Amount,
	})
	s.logger.LogTransactionEvent(txn.ID, utils.EventTransactionPlaced, txn.Amount, string(txn.Type))

	return txn, nil
}

// ResolveTransaction approves or declines a pending transaction. The
// required permission depends on the transaction type; holding the deposit
// approval permission says nothing about withdrawals.
func (s *savingsService) ResolveTransaction(ctx context.Context, actor *Actor, transactionID primitive.ObjectID, approve bool) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.IsResolved() {
		return nil, ErrAlreadyResolved
	}

	user, err := s.userRepo.GetByID(ctx, txn.UserID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, txn.ApprovalPermission(), &Target{User: user}) {
		return nil, ErrPermissionDenied
	}

	if approve && txn.Type == models.TransactionTypeWithdraw {
		balance, err := s.planBalance(ctx, txn.UserID, txn.PlanID)
		if err != nil {
			return nil, err
		}
		if txn.Amount > balance {
			return nil, ErrInsufficientBalance
		}
	}

	status := models.TransactionStatusDeclined
	if approve {
		status = models.TransactionStatusApproved
	}

	resolved, err := s.transactionRepo.ResolveIfPending(ctx, transactionID, status, actor.AdminID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}

	action := models.AuditActionApprove
	if !approve {
		action = models.AuditActionDecline
	}
	s.audit(ctx, actor, action, "transaction", resolved.ID.Hex(),
		map[string]interface{}{"status": string(models.TransactionStatusPending)},
		map[string]interface{}{"status": string(resolved.Status)},
	)
	s.logger.LogTransactionEvent(resolved.ID, utils.EventTransactionResolved, resolved.Amount, string(resolved.Type))
	s.notifications.NotifyTransactionResolved(ctx, user, resolved)

	return resolved, nil
}

func (s *savingsService) GetUserTransactions(ctx context.Context, actor *Actor, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}) {
		return nil, 0, ErrPermissionDenied
	}

	return s.transactionRepo.GetByUser(ctx, userID, params)
}

func (s *savingsService) ListTransactionsByStatus(ctx context.Context, actor *Actor, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	permission := models.PermissionApproveDeposit
	if !s.permissions.CanPerform(actor, permission, nil) &&
		!s.permissions.CanPerform(actor, models.PermissionApproveWithdrawal, nil) {
		return nil, 0, ErrPermissionDenied
	}

	return s.transactionRepo.GetByStatus(ctx, status, params)
}

func (s *savingsService) GetPlanBalance(ctx context.Context, actor *Actor, userID, planID primitive.ObjectID) (float64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}) {
		return 0, ErrPermissionDenied
	}

	return s.planBalance(ctx, userID, planID)
}

func (s *savingsService) planBalance(ctx context.Context, userID, planID primitive.ObjectID) (float64, error) {
	txns, err := s.transactionRepo.GetByUserAndPlan(ctx, userID, planID)
	if err != nil {
		return 0, err
	}

	return models.PlanBalance(planID, txns), nil
}

func (s *savingsService) audit(ctx context.Context, actor *Actor, action models.AuditAction, resource, resourceID string, oldValues, newValues map[string]interface{}) {
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
