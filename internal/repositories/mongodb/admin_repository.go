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

type adminRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewAdminRepository(db *mongo.Database, cache CacheService) interfaces.AdminRepository {
	return &adminRepository{
		collection: db.Collection("admins"),
		cache:      cache,
	}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	admin.ID = primitive.NewObjectID()
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	r.cacheAdmin(ctx, admin)

	return nil
}

func (r *adminRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	if r.cache != nil {
		var admin models.Admin
		if err := r.cache.Get(ctx, utils.CacheAdminPrefix+id.Hex(), &admin); err == nil {
			return &admin, nil
		}
	}

	var admin models.Admin
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("admin %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	r.cacheAdmin(ctx, &admin)

	return &admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("admin with email: %w", interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}

	r.cacheAdmin(ctx, &admin)

	return &admin, nil
}

func (r *adminRepository) GetByUID(ctx context.Context, uid string) (*models.Admin, error) {
	var admin models.Admin
	err := r.collection.FindOne(ctx, bson.M{"uid": uid}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("admin with uid: %w", interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by uid: %w", err)
	}

	r.cacheAdmin(ctx, &admin)

	return &admin, nil
}

func (r *adminRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("admin %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidateAdminCache(ctx, id.Hex())

	return nil
}

func (r *adminRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("admin %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidateAdminCache(ctx, id.Hex())

	return nil
}

func (r *adminRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Admin, int64, error) {
	return r.findAdminsWithFilter(ctx, bson.M{}, params)
}

func (r *adminRepository) GetByBranch(ctx context.Context, branchID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Admin, int64, error) {
	return r.findAdminsWithFilter(ctx, bson.M{"branch_id": branchID}, params)
}

func (r *adminRepository) CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"role_id": roleID})
}

func (r *adminRepository) CountByBranch(ctx context.Context, branchID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"branch_id": branchID})
}

func (r *adminRepository) findAdminsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Admin, int64, error) {
	if params.Search != "" {
		searchFilter := params.GetSearchFilter([]string{"email", "phone"})
		if len(searchFilter) > 0 {
			filter = bson.M{"$and": []bson.M{filter, searchFilter}}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count admins: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find admins: %w", err)
	}
	defer cursor.Close(ctx)

	var admins []*models.Admin
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, 0, fmt.Errorf("failed to decode admins: %w", err)
	}

	return admins, total, nil
}

func (r *adminRepository) cacheAdmin(ctx context.Context, admin *models.Admin) {
	if r.cache != nil {
		r.cache.Set(ctx, utils.CacheAdminPrefix+admin.ID.Hex(), admin, cacheTTL)
	}
}

func (r *adminRepository) invalidateAdminCache(ctx context.Context, adminID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, utils.CacheAdminPrefix+adminID)
	}
}
