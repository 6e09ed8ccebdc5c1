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

type planRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewPlanRepository(db *mongo.Database, cache CacheService) interfaces.PlanRepository {
	return &planRepository{
		collection: db.Collection("plans"),
		cache:      cache,
	}
}

func (r *planRepository) Create(ctx context.Context, plan *models.Plan) error {
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

func (r *planRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Plan, error) {
	if r.cache != nil {
		var plan models.Plan
		if err := r.cache.Get(ctx, utils.CachePlanPrefix+id.Hex(), &plan); err == nil {
			return &plan, nil
		}
	}

	var plan models.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("plan %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, utils.CachePlanPrefix+id.Hex(), plan, cacheTTL)
	}

	return &plan, nil
}

func (r *planRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("plan %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	if r.cache != nil {
		r.cache.Delete(ctx, utils.CachePlanPrefix+id.Hex())
	}

	return nil
}

func (r *planRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("plan %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	if r.cache != nil {
		r.cache.Delete(ctx, utils.CachePlanPrefix+id.Hex())
	}

	return nil
}

func (r *planRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Plan, int64, error) {
	filter := bson.M{}
	if params.Search != "" {
		filter = params.GetSearchFilter([]string{"name", "description"})
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []*models.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, 0, fmt.Errorf("failed to decode plans: %w", err)
	}

	return plans, total, nil
}

func (r *planRepository) GetActive(ctx context.Context) ([]*models.Plan, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.PlanStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to find active plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []*models.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode active plans: %w", err)
	}

	return plans, nil
}
