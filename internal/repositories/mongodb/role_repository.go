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

type roleRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewRoleRepository(db *mongo.Database, cache CacheService) interfaces.RoleRepository {
	return &roleRepository{
		collection: db.Collection("roles"),
		cache:      cache,
	}
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	role.ID = primitive.NewObjectID()
	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, role)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	r.cacheRole(ctx, role)

	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	if r.cache != nil {
		var role models.Role
		if err := r.cache.Get(ctx, utils.CacheRolePrefix+id.Hex(), &role); err == nil {
			return &role, nil
		}
	}

	var role models.Role
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("role %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	r.cacheRole(ctx, &role)

	return &role, nil
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("role %q: %w", name, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get role by name: %w", err)
	}

	return &role, nil
}

func (r *roleRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("role %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidateRoleCache(ctx, id.Hex())

	return nil
}

func (r *roleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("role %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidateRoleCache(ctx, id.Hex())

	return nil
}

func (r *roleRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Role, int64, error) {
	filter := bson.M{}
	if params.Search != "" {
		filter = params.GetSearchFilter([]string{"name"})
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count roles: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find roles: %w", err)
	}
	defer cursor.Close(ctx)

	var roles []*models.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, 0, fmt.Errorf("failed to decode roles: %w", err)
	}

	return roles, total, nil
}

func (r *roleRepository) GetByBranch(ctx context.Context, branchID primitive.ObjectID) ([]*models.Role, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"branch_id": branchID})
	if err != nil {
		return nil, fmt.Errorf("failed to find branch roles: %w", err)
	}
	defer cursor.Close(ctx)

	var roles []*models.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, fmt.Errorf("failed to decode branch roles: %w", err)
	}

	return roles, nil
}

func (r *roleRepository) cacheRole(ctx context.Context, role *models.Role) {
	if r.cache != nil {
		r.cache.Set(ctx, utils.CacheRolePrefix+role.ID.Hex(), role, cacheTTL)
	}
}

func (r *roleRepository) invalidateRoleCache(ctx context.Context, roleID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, utils.CacheRolePrefix+roleID)
	}
}
