package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminStatus string

const (
	AdminStatusActive   AdminStatus = "active"
	AdminStatusInactive AdminStatus = "inactive"
	AdminStatusPending  AdminStatus = "pending"
)

type Admin struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Email     string              `json:"email" bson:"email" validate:"required,email"`
	Phone     string              `json:"phone" bson:"phone" validate:"required"`
	RoleID    *primitive.ObjectID `json:"role_id" bson:"role_id"`
	BranchID  *primitive.ObjectID `json:"branch_id" bson:"branch_id"`
	Status    AdminStatus         `json:"status" bson:"status" default:"pending"`
	UID       string              `json:"uid" bson:"uid"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at"`
}

// CanSignIn reports whether the dashboard accepts this admin. An inactive
// admin keeps their record and credential but loses access. A pending
// admin is still awaiting provisioning: they hold a session, and having no
// role means every permission check denies.
func (a *Admin) CanSignIn() bool {
	return a.Status == AdminStatusActive || a.Status == AdminStatusPending
}
