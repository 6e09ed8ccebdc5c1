package interfaces

import (
	"context"
	"time"

	"coopsave/internal/models"
	"coopsave/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)

	// ResolveIfPending flips a pending transaction to approved or declined
	// in one conditional write, recording the resolving admin. A transaction
	// that is absent or already resolved yields a not found error, which
	// makes double resolution a no-op for the second caller.
	ResolveIfPending(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus, resolvedBy primitive.ObjectID) (*models.Transaction, error)

	GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	GetByUserAndPlan(ctx context.Context, userID, planID primitive.ObjectID) ([]*models.Transaction, error)
	GetByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Transaction, int64, error)

	// GetPendingOlderThan feeds the reconciliation sweep.
	GetPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error)
}
