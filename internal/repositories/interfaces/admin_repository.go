package interfaces

import (
	"context"

	"coopsave/internal/models"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByUID(ctx context.Context, uid string) (*models.Admin, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Admin, int64, error)
	GetByBranch(ctx context.Context, branchID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Admin, int64, error)
	CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error)
	CountByBranch(ctx context.Context, branchID primitive.ObjectID) (int64, error)
}
