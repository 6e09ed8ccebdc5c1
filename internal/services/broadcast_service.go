package services

import (
	"context"
	"fmt"

	"coopsave/internal/models"
	"coopsave/internal/repositories/interfaces"
	"coopsave/internal/utils"
	"coopsave/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BroadcastService stores announcements and dispatches them. Recipients are
// a targeting rule (all users or branch ids), resolved at dispatch and
// display time rather than frozen at send.
type BroadcastService interface {
	SendBroadcast(ctx context.Context, actor *Actor, request *BroadcastRequest) (*models.Broadcast, error)
	ListBroadcasts(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Broadcast, int64, error)
	GetRecipients(ctx context.Context, actor *Actor, broadcastID primitive.ObjectID) ([]*models.User, error)
	DeleteBroadcast(ctx context.Context, actor *Actor, broadcastID primitive.ObjectID) error
}

type broadcastService struct {
	broadcastRepo interfaces.BroadcastRepository
	userRepo      interfaces.UserRepository
	branchRepo    interfaces.BranchRepository
	auditLogRepo  interfaces.AuditLogRepository
	permissions   PermissionService
	notifications NotificationService
	logger        *logger.Logger
}

type BroadcastRequest struct {
	Message    string   `json:"message" validate:"required,min=1,max=1000"`
	Recipients []string `json:"recipients" validate:"required,min=1"`
}

func NewBroadcastService(
	broadcastRepo interfaces.BroadcastRepository,
	userRepo interfaces.UserRepository,
	branchRepo interfaces.BranchRepository,
	auditLogRepo interfaces.AuditLogRepository,
	permissions PermissionService,
	notifications NotificationService,
	logger *logger.Logger,
) BroadcastService {
	return &broadcastService{
		broadcastRepo: broadcastRepo,
		userRepo:      userRepo,
		branchRepo:    branchRepo,
		auditLogRepo:  auditLogRepo,
		permissions:   permissions,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *broadcastService) SendBroadcast(ctx context.Context, actor *Actor, request *BroadcastRequest) (*models.Broadcast, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !s.permissions.CanPerform(actor, models.PermissionSendBroadcast, nil) {
		return nil, ErrPermissionDenied
	}

	// Each recipient is either the "all" sentinel or a real branch id.
	for _, recipient := range request.Recipients {
		if recipient == models.BroadcastRecipientsAll {
			continue
		}
		branchID, err := primitive.ObjectIDFromHex(recipient)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient %q: %w", recipient, err)
		}
		if _, err := s.branchRepo.GetByID(ctx, branchID); err != nil {
			return nil, err
		}
	}

	broadcast := &models.Broadcast{
		Message:    request.Message,
		Recipients: request.Recipients,
	}
	if err := s.broadcastRepo.Create(ctx, broadcast); err != nil {
		return nil, err
	}

	recipients, err := s.userRepo.GetByBroadcastTarget(ctx, broadcast)
	if err != nil {
		s.logger.WithError(err).Warn("failed to resolve broadcast recipients")
	} else {
		s.notifications.SendBroadcast(ctx, broadcast, recipients)
	}

	s.audit(ctx, actor, broadcast)
	s.logger.WithAdminID(actor.AdminID).WithField("broadcast_id", broadcast.ID.Hex()).Info(utils.EventBroadcastSent)

	return broadcast, nil
}

func (s *broadcastService) ListBroadcasts(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Broadcast, int64, error) {
	if !s.permissions.CanPerform(actor, models.PermissionSendBroadcast, nil) {
		return nil, 0, ErrPermissionDenied
	}

	return s.broadcastRepo.List(ctx, params)
}

// GetRecipients resolves the stored rule against current users, so the
// answer drifts as users join or leave targeted branches.
func (s *broadcastService) GetRecipients(ctx context.Context, actor *Actor, broadcastID primitive.ObjectID) ([]*models.User, error) {
	if !s.permissions.CanPerform(actor, models.PermissionSendBroadcast, nil) {
		return nil, ErrPermissionDenied
	}

	broadcast, err := s.broadcastRepo.GetByID(ctx, broadcastID)
	if err != nil {
		return nil, err
	}

	return s.userRepo.GetByBroadcastTarget(ctx, broadcast)
}

func (s *broadcastService) DeleteBroadcast(ctx context.Context, actor *Actor, broadcastID primitive.ObjectID) error {
	if !s.permissions.CanPerform(actor, models.PermissionSendBroadcast, nil) {
		return ErrPermissionDenied
	}

	return s.broadcastRepo.Delete(ctx, broadcastID)
}

func (s *broadcastService) audit(ctx context.Context, actor *Actor, broadcast *models.Broadcast) {
	entry := &models.AuditLog{
		AdminID:    &actor.AdminID,
		Action:     models.AuditActionCreate,
		Resource:   "broadcast",
		ResourceID: broadcast.ID.Hex(),
		NewValues: map[string]interface{}{
			"recipients": broadcast.Recipients,
		},
	}
	if err := s.auditLogRepo.Create(ctx, entry); err != nil {
		s.logger.WithAdminID(actor.AdminID).WithError(err).Warn("failed to write audit entry")
	}
}
