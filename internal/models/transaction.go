package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string
type TransactionStatus string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeWithdraw TransactionType = "withdraw"

	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusDeclined TransactionStatus = "declined"
)

// Transaction is a deposit or withdrawal request against one of a user's
// plan subscriptions. Approved and declined are terminal.
type Transaction struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	PlanID     primitive.ObjectID  `json:"plan_id" bson:"plan_id" validate:"required"`
	Type       TransactionType     `json:"type" bson:"type" validate:"required"`
	Amount     float64             `json:"amount" bson:"amount" validate:"required,gt=0"`
	Status     TransactionStatus   `json:"status" bson:"status" default:"pending"`
	ResolvedBy *primitive.ObjectID `json:"resolved_by" bson:"resolved_by"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt  *time.Time          `json:"updated_at" bson:"updated_at"`
}

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusApproved, TransactionStatusDeclined:
		return true
	}
	return false
}

func (t *Transaction) IsResolved() bool {
	return t.Status != TransactionStatusPending
}

// ApprovalPermission returns the permission that resolving this transaction
// requires. The check is type-specific, not a blanket permission.
func (t *Transaction) ApprovalPermission() Permission {
	if t.Type == TransactionTypeWithdraw {
		return PermissionApproveWithdrawal
	}
	return PermissionApproveDeposit
}

// PlanBalance folds approved transactions for one plan into a balance.
// Pending and declined entries never count. The fold is commutative, so
// input order does not matter.
func PlanBalance(planID primitive.ObjectID, transactions []*Transaction) float64 {
	var balance float64
	for _, tx := range transactions {
		if tx.PlanID != planID || tx.Status != TransactionStatusApproved {
			continue
		}
		switch tx.Type {
		case TransactionTypeDeposit:
			balance += tx.Amount
		case TransactionTypeWithdraw:
			balance -= tx.Amount
		}
	}
	return balance
}
