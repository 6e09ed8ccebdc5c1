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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type branchRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewBranchRepository(db *mongo.Database, cache CacheService) interfaces.BranchRepository {
	return &branchRepository{
		collection: db.Collection("branches"),
		cache:      cache,
	}
}

func (r *branchRepository) Create(ctx context.Context, branch *models.Branch) error {
	branch.ID = primitive.NewObjectID()
	branch.CreatedAt = time.Now()
	branch.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, branch)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}

	return nil
}

func (r *branchRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Branch, error) {
	if r.cache != nil {
		var branch models.Branch
		if err := r.cache.Get(ctx, utils.CacheBranchPrefix+id.Hex(), &branch); err == nil {
			return &branch, nil
		}
	}

	var branch models.Branch
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&branch)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("branch %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, utils.CacheBranchPrefix+id.Hex(), branch, cacheTTL)
	}

	return &branch, nil
}

func (r *branchRepository) GetByName(ctx context.Context, name string) (*models.Branch, error) {
	var branch models.Branch
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&branch)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("branch %q: %w", name, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get branch by name: %w", err)
	}

	return &branch, nil
}

func (r *branchRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("branch %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	if r.cache != nil {
		r.cache.Delete(ctx, utils.CacheBranchPrefix+id.Hex())
	}

	return nil
}

func (r *branchRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("branch %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	if r.cache != nil {
		r.cache.Delete(ctx, utils.CacheBranchPrefix+id.Hex())
	}

	return nil
}

func (r *branchRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Branch, int64, error) {
	filter := bson.M{}
	if params.Search != "" {
		filter = params.GetSearchFilter([]string{"name"})
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count branches: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find branches: %w", err)
	}
	defer cursor.Close(ctx)

	var branches []*models.Branch
	if err := cursor.All(ctx, &branches); err != nil {
		return nil, 0, fmt.Errorf("failed to decode branches: %w", err)
	}

	return branches, total, nil
}

func (r *branchRepository) GetAll(ctx context.Context) ([]*models.Branch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find branches: %w", err)
	}
	defer cursor.Close(ctx)

	var branches []*models.Branch
	if err := cursor.All(ctx, &branches); err != nil {
		return nil, fmt.Errorf("failed to decode branches: %w", err)
	}

	return branches, nil
}
