package interfaces

import (
	"context"

	"coopsave/internal/models"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ResolveIfPending flips a pending subscription to the given terminal
	// status in one conditional write. It returns the updated document, or
	// models-level not found when the subscription is absent or already
	// resolved.
	ResolveIfPending(ctx context.Context, id primitive.ObjectID, status models.SubscriptionStatus, updates map[string]interface{}) (*models.Subscription, error)

	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Subscription, error)
	// GetBlocking returns the subscription that prevents a new request for
	// the same user and plan, meaning one whose status is not declined.
	GetBlocking(ctx context.Context, userID, planID primitive.ObjectID) (*models.Subscription, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Subscription, int64, error)
	GetByStatus(ctx context.Context, status models.SubscriptionStatus, params *utils.PaginationParams) ([]*models.Subscription, int64, error)
	CountByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error)
}
