package interfaces

import (
	"context"

	"coopsave/internal/models"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BranchRepository interface {
	Create(ctx context.Context, branch *models.Branch) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Branch, error)
	GetByName(ctx context.Context, name string) (*models.Branch, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Branch, int64, error)
	GetAll(ctx context.Context) ([]*models.Branch, error)
}
