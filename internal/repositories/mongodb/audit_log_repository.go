package mongodb

import (
	"context"
	"fmt"
	"time"

	"coopsave/internal/models"
	"coopsave/internal/repositories/interfaces"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type auditLogRepository struct {
	collection *mongo.Collection
}

func NewAuditLogRepository(db *mongo.Database) interfaces.AuditLogRepository {
	return &auditLogRepository{
		collection: db.Collection("audit_logs"),
	}
}

func (r *auditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func (r *auditLogRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	return r.findLogsWithFilter(ctx, bson.M{}, params)
}

func (r *auditLogRepository) GetByResource(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	filter := bson.M{"resource": resource}
	if resourceID != "" {
		filter["resource_id"] = resourceID
	}
	return r.findLogsWithFilter(ctx, filter, params)
}

func (r *auditLogRepository) GetByAdmin(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	return r.findLogsWithFilter(ctx, bson.M{"admin_id": adminID}, params)
}

func (r *auditLogRepository) findLogsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode audit logs: %w", err)
	}

	return logs, total, nil
}
