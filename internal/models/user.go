package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string
type KYCStatus string
type ActivationStage string

const (
	UserStatusPending    UserStatus = "pending"
	UserStatusActive     UserStatus = "active"
	UserStatusRestricted UserStatus = "restricted"

	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"

	// Activation runs credential creation, the status flip, and the
	// notification in that order. The stage is persisted before each step
	// so the sweep can re-drive an interrupted run.
	ActivationStageCredential ActivationStage = "credential"
	ActivationStageStatus     ActivationStage = "status"
	ActivationStageNotify     ActivationStage = "notify"
)

type BankAccount struct {
	AccountName   string `json:"account_name" bson:"account_name"`
	AccountNumber string `json:"account_number" bson:"account_number"`
	BankCode      string `json:"bank_code" bson:"bank_code"`
	BankName      string `json:"bank_name" bson:"bank_name"`
}

type ActivationMarker struct {
	Stage     ActivationStage `json:"stage" bson:"stage"`
	StartedAt time.Time       `json:"started_at" bson:"started_at"`
}

type User struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name          string               `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email         string               `json:"email" bson:"email" validate:"required,email"`
	Phone         string               `json:"phone" bson:"phone" validate:"required"`
	State         string               `json:"state" bson:"state"`
	LGA           string               `json:"lga" bson:"lga"`
	StreetAddress string               `json:"street_address" bson:"street_address"`
	BranchID      *primitive.ObjectID  `json:"branch_id" bson:"branch_id"`
	Status        UserStatus           `json:"status" bson:"status" default:"pending"`
	KYC           KYCStatus            `json:"kyc" bson:"kyc" default:"pending"`
	Admins        []primitive.ObjectID `json:"admins" bson:"admins"`
	BankAccount   *BankAccount         `json:"bank_account" bson:"bank_account"`
	UID           string               `json:"uid" bson:"uid"`
	Activation    *ActivationMarker    `json:"activation" bson:"activation"`
	ConvertedFrom *primitive.ObjectID  `json:"converted_from" bson:"converted_from"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}

// IsManagedBy reports whether adminID appears in the user's assigned-admin
// list. Assigned-role scoping keys off this.
func (u *User) IsManagedBy(adminID primitive.ObjectID) bool {
	for _, id := range u.Admins {
		if id == adminID {
			return true
		}
	}
	return false
}

// CanActivate gates the activate action: KYC must have passed and at least
// one managing admin must be assigned.
func (u *User) CanActivate() bool {
	return u.KYC == KYCStatusApproved && len(u.Admins) > 0
}
