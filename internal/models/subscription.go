package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending  SubscriptionStatus = "pending"
	SubscriptionStatusApproved SubscriptionStatus = "approved"
	SubscriptionStatusDeclined SubscriptionStatus = "declined"
)

// Subscription enrolls a user in a plan. EndDate is set on approval from
// the plan's tenure; it stays nil while pending.
type Subscription struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	PlanID    primitive.ObjectID `json:"plan_id" bson:"plan_id" validate:"required"`
	Status    SubscriptionStatus `json:"status" bson:"status" default:"pending"`
	StartDate time.Time          `json:"start_date" bson:"start_date"`
	EndDate   *time.Time         `json:"end_date" bson:"end_date"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Blocks reports whether this subscription blocks a new enrollment in the
// same plan. Only a declined subscription frees the plan up again.
func (s *Subscription) Blocks(planID primitive.ObjectID) bool {
	return s.PlanID == planID && s.Status != SubscriptionStatusDeclined
}
