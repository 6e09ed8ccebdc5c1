package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditAction string

const (
	AuditActionCreate   AuditAction = "create"
	AuditActionUpdate   AuditAction = "update"
	AuditActionDelete   AuditAction = "delete"
	AuditActionApprove  AuditAction = "approve"
	AuditActionDecline  AuditAction = "decline"
	AuditActionActivate AuditAction = "activate"
	AuditActionRestrict AuditAction = "restrict"
	AuditActionConvert  AuditAction = "convert"
	AuditActionLogin    AuditAction = "login"
)

// AuditLog records one workflow transition. Every status/kyc transition
// writes exactly one entry.
type AuditLog struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	AdminID    *primitive.ObjectID    `json:"admin_id" bson:"admin_id"`
	Action     AuditAction            `json:"action" bson:"action" validate:"required"`
	Resource   string                 `json:"resource" bson:"resource" validate:"required"`
	ResourceID string                 `json:"resource_id" bson:"resource_id"`
	OldValues  map[string]interface{} `json:"old_values" bson:"old_values"`
	NewValues  map[string]interface{} `json:"new_values" bson:"new_values"`
	IPAddress  string                 `json:"ip_address" bson:"ip_address"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
}
