package interfaces

import (
	"context"

	"coopsave/internal/models"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error

	List(ctx context.Context, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
	GetByResource(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
	GetByAdmin(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}
