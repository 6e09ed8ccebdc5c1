package interfaces

import (
	"context"

	"coopsave/internal/models"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProspectRepository interface {
	Create(ctx context.Context, prospect *models.Prospect) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Prospect, error)
	GetByPhone(ctx context.Context, phone string) (*models.Prospect, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Prospect, int64, error)
	GetByBranch(ctx context.Context, branchID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Prospect, int64, error)
	GetAll(ctx context.Context) ([]*models.Prospect, error)
}
