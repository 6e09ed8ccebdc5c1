package interfaces

import (
	"context"

	"coopsave/internal/models"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Plan, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Plan, int64, error)
	GetActive(ctx context.Context) ([]*models.Plan, error)
}
