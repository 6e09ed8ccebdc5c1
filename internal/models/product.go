package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a store catalog item. It has no workflow coupling.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Image       string             `json:"image" bson:"image"`
	Name        string             `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Price       float64            `json:"price" bson:"price" validate:"required,gt=0"`
	Description string             `json:"description" bson:"description"`
	Status      ProductStatus      `json:"status" bson:"status" default:"active"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
