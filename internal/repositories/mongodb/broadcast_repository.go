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

type broadcastRepository struct {
	collection *mongo.Collection
}

func NewBroadcastRepository(db *mongo.Database) interfaces.BroadcastRepository {
	return &broadcastRepository{
		collection: db.Collection("broadcasts"),
	}
}

func (r *broadcastRepository) Create(ctx context.Context, broadcast *models.Broadcast) error {
	broadcast.ID = primitive.NewObjectID()
	broadcast.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, broadcast)
	if err != nil {
		return fmt.Errorf("failed to create broadcast: %w", err)
	}

	return nil
}

func (r *broadcastRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Broadcast, error) {
	var broadcast models.Broadcast
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&broadcast)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("broadcast %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get broadcast: %w", err)
	}

	return &broadcast, nil
}

func (r *broadcastRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete broadcast: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("broadcast %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

func (r *broadcastRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Broadcast, int64, error) {
	filter := bson.M{}
	if params.Search != "" {
		filter = params.GetSearchFilter([]string{"message"})
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count broadcasts: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find broadcasts: %w", err)
	}
	defer cursor.Close(ctx)

	var broadcasts []*models.Broadcast
	if err := cursor.All(ctx, &broadcasts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode broadcasts: %w", err)
	}

	return broadcasts, total, nil
}

func (r *broadcastRepository) GetAll(ctx context.Context) ([]*models.Broadcast, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find broadcasts: %w", err)
	}
	defer cursor.Close(ctx)

	var broadcasts []*models.Broadcast
	if err := cursor.All(ctx, &broadcasts); err != nil {
		return nil, fmt.Errorf("failed to decode broadcasts: %w", err)
	}

	return broadcasts, nil
}
