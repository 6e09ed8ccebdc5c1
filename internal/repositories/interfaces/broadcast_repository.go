package interfaces

import (
	"context"

	"coopsave/internal/models"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BroadcastRepository interface {
	Create(ctx context.Context, broadcast *models.Broadcast) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Broadcast, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Broadcast, int64, error)
	GetAll(ctx context.Context) ([]*models.Broadcast, error)
}
