package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
)

// Plan is a savings/food product. Deactivating a plan hides it from new
// subscriptions; existing subscriptions are untouched.
type Plan struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Amount       float64            `json:"amount" bson:"amount" validate:"required,gt=0"`
	Image        string             `json:"image" bson:"image"`
	TenureMonths int                `json:"tenure_months" bson:"tenure_months" validate:"required,gt=0"`
	Description  string             `json:"description" bson:"description"`
	Status       PlanStatus         `json:"status" bson:"status" default:"active"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
