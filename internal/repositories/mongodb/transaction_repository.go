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

type transactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) interfaces.TransactionRepository {
	return &transactionRepository{
		collection: db.Collection("transactions"),
	}
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	txn.ID = primitive.NewObjectID()
	txn.Status = models.TransactionStatusPending
	txn.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, txn)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&txn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("transaction %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &txn, nil
}

// ResolveIfPending matches on pending status so concurrent approvals cannot
// both succeed. The loser of the race sees ErrNotFound.
func (r *transactionRepository) ResolveIfPending(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus, resolvedBy primitive.ObjectID) (*models.Transaction, error) {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":      status,
		"resolved_by": resolvedBy,
		"updated_at":  &now,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var txn models.Transaction
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": models.TransactionStatusPending},
		update,
		opts,
	).Decode(&txn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("pending transaction %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve transaction: %w", err)
	}

	return &txn, nil
}

func (r *transactionRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return r.findTransactionsWithFilter(ctx, bson.M{"user_id": userID}, params)
}

func (r *transactionRepository) GetByUserAndPlan(ctx context.Context, userID, planID primitive.ObjectID) ([]*models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID, "plan_id": planID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find plan transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode plan transactions: %w", err)
	}

	return txns, nil
}

func (r *transactionRepository) GetByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return r.findTransactionsWithFilter(ctx, bson.M{"status": status}, params)
}

func (r *transactionRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return r.findTransactionsWithFilter(ctx, bson.M{}, params)
}

func (r *transactionRepository) GetPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error) {
	filter := bson.M{
		"status":     models.TransactionStatusPending,
		"created_at": bson.M{"$lt": cutoff},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale pending transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode stale pending transactions: %w", err)
	}

	return txns, nil
}

func (r *transactionRepository) findTransactionsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, 0, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txns, total, nil
}
