package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProspectStatus string

const (
	ProspectStatusPending ProspectStatus = "pending"
)

// Prospect is a public registrant awaiting conversion into a User.
// Conversion creates a User document and deletes the Prospect; the two
// writes are not atomic, so the sweep reconciles half-finished conversions.
type Prospect struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name          string              `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email         string              `json:"email" bson:"email" validate:"required,email"`
	Phone         string              `json:"phone" bson:"phone" validate:"required"`
	State         string              `json:"state" bson:"state" validate:"required"`
	LGA           string              `json:"lga" bson:"lga" validate:"required"`
	StreetAddress string              `json:"street_address" bson:"street_address" validate:"required"`
	BranchID      *primitive.ObjectID `json:"branch_id" bson:"branch_id"`
	Status        ProspectStatus      `json:"status" bson:"status" default:"pending"`
	KYC           KYCStatus           `json:"kyc" bson:"kyc" default:"pending"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
}
