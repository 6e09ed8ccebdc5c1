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

type subscriptionRepository struct {
	collection *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) interfaces.SubscriptionRepository {
	return &subscriptionRepository{
		collection: db.Collection("subscriptions"),
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	sub.ID = primitive.NewObjectID()
	sub.Status = models.SubscriptionStatusPending
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, sub)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("subscription %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("subscription %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

func (r *subscriptionRepository) ResolveIfPending(ctx context.Context, id primitive.ObjectID, status models.SubscriptionStatus, updates map[string]interface{}) (*models.Subscription, error) {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	for k, v := range updates {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var sub models.Subscription
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": models.SubscriptionStatusPending},
		bson.M{"$set": set},
		opts,
	).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("pending subscription %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve subscription: %w", err)
	}

	return &sub, nil
}

func (r *subscriptionRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find user subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []*models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("failed to decode user subscriptions: %w", err)
	}

	return subs, nil
}

// GetBlocking looks for a non-declined subscription on the same user and
// plan. Pending and approved both block a new request.
func (r *subscriptionRepository) GetBlocking(ctx context.Context, userID, planID primitive.ObjectID) (*models.Subscription, error) {
	filter := bson.M{
		"user_id": userID,
		"plan_id": planID,
		"status":  bson.M{"$ne": models.SubscriptionStatusDeclined},
	}

	var sub models.Subscription
	err := r.collection.FindOne(ctx, filter).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("blocking subscription: %w", interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to check blocking subscription: %w", err)
	}

	return &sub, nil
}

func (r *subscriptionRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Subscription, int64, error) {
	return r.findSubscriptionsWithFilter(ctx, bson.M{}, params)
}

func (r *subscriptionRepository) GetByStatus(ctx context.Context, status models.SubscriptionStatus, params *utils.PaginationParams) ([]*models.Subscription, int64, error) {
	return r.findSubscriptionsWithFilter(ctx, bson.M{"status": status}, params)
}

func (r *subscriptionRepository) CountByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"plan_id": planID})
}

func (r *subscriptionRepository) findSubscriptionsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Subscription, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []*models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode subscriptions: %w", err)
	}

	return subs, total, nil
}
