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

type prospectRepository struct {
	collection *mongo.Collection
}

func NewProspectRepository(db *mongo.Database) interfaces.ProspectRepository {
	return &prospectRepository{
		collection: db.Collection("prospects"),
	}
}

func (r *prospectRepository) Create(ctx context.Context, prospect *models.Prospect) error {
	prospect.ID = primitive.NewObjectID()
	prospect.Status = models.ProspectStatusPending
	prospect.KYC = models.KYCStatusPending
	prospect.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, prospect)
	if err != nil {
		return fmt.Errorf("failed to create prospect: %w", err)
	}

	return nil
}

func (r *prospectRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Prospect, error) {
	var prospect models.Prospect
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&prospect)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("prospect %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get prospect: %w", err)
	}

	return &prospect, nil
}

func (r *prospectRepository) GetByPhone(ctx context.Context, phone string) (*models.Prospect, error) {
	var prospect models.Prospect
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&prospect)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("prospect with phone: %w", interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get prospect by phone: %w", err)
	}

	return &prospect, nil
}

func (r *prospectRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update prospect: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("prospect %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

func (r *prospectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete prospect: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("prospect %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

func (r *prospectRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Prospect, int64, error) {
	return r.findProspectsWithFilter(ctx, bson.M{}, params)
}

func (r *prospectRepository) GetByBranch(ctx context.Context, branchID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Prospect, int64, error) {
	return r.findProspectsWithFilter(ctx, bson.M{"branch_id": branchID}, params)
}

func (r *prospectRepository) GetAll(ctx context.Context) ([]*models.Prospect, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find prospects: %w", err)
	}
	defer cursor.Close(ctx)

	var prospects []*models.Prospect
	if err := cursor.All(ctx, &prospects); err != nil {
		return nil, fmt.Errorf("failed to decode prospects: %w", err)
	}

	return prospects, nil
}

func (r *prospectRepository) findProspectsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Prospect, int64, error) {
	if params.Search != "" {
		searchFilter := params.GetSearchFilter([]string{"name", "email", "phone"})
		if len(searchFilter) > 0 {
			filter = bson.M{"$and": []bson.M{filter, searchFilter}}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count prospects: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find prospects: %w", err)
	}
	defer cursor.Close(ctx)

	var prospects []*models.Prospect
	if err := cursor.All(ctx, &prospects); err != nil {
		return nil, 0, fmt.Errorf("failed to decode prospects: %w", err)
	}

	return prospects, total, nil
}
