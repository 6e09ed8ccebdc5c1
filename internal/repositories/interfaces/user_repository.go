package interfaces

import (
	"context"
	"time"

	"coopsave/internal/models"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetByStatus(ctx context.Context, status models.UserStatus, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetByBranch(ctx context.Context, branchID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetByAssignedAdmin(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetByBroadcastTarget(ctx context.Context, broadcast *models.Broadcast) ([]*models.User, error)

	// GetByConvertedFrom finds the user produced by converting the given
	// prospect, if the conversion already wrote one.
	GetByConvertedFrom(ctx context.Context, prospectID primitive.ObjectID) (*models.User, error)

	// Assigned admin membership.
	AddAdmin(ctx context.Context, userID, adminID primitive.ObjectID) error
	RemoveAdmin(ctx context.Context, userID, adminID primitive.ObjectID) error

	// GetStaleActivations returns users whose activation marker was written
	// before the cutoff and never cleared. The sweep re-drives these.
	GetStaleActivations(ctx context.Context, cutoff time.Time) ([]*models.User, error)

	CountByBranch(ctx context.Context, branchID primitive.ObjectID) (int64, error)
	GetCountByStatus(ctx context.Context, status models.UserStatus) (int64, error)
}
