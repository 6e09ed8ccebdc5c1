package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Permission string
type RoleType string

// Permissions are a closed set. Values are the display strings shown on the
// role-editor screen; matching is by exact value with the single "all"
// sentinel as the super-admin escape hatch.
const (
	PermissionAll Permission = "all"

	PermissionCreateAdmin    Permission = "Create Admin"
	PermissionManageAdmins   Permission = "Manage Admins"
	PermissionManageRoles    Permission = "Manage Roles"
	PermissionManageBranches Permission = "Manage Branches"
	PermissionManagePlans    Permission = "Manage Plans"
	PermissionManageStores   Permission = "Manage Stores"
	PermissionManageUsers    Permission = "Manage Users"
	PermissionManageKYC      Permission = "Manage KYC"
	PermissionActivateUser   Permission = "Activate/Restrict User"
	PermissionSendBroadcast  Permission = "Send Broadcast"

	PermissionSubscribePlan     Permission = "Subscribe Plan"
	PermissionApprovePlan       Permission = "Approve/Reject Plan"
	PermissionPlaceDeposit      Permission = "Place Deposit"
	PermissionPlaceWithdrawal   Permission = "Place Withdrawal"
	PermissionApproveDeposit    Permission = "Approve/Reject Deposit"
	PermissionApproveWithdrawal Permission = "Approve/Reject Withdrawal"

	RoleTypeGeneral  RoleType = "general"
	RoleTypeBranch   RoleType = "branch"
	RoleTypeAssigned RoleType = "assigned"
)

// AllPermissions is the full enumeration, minus the sentinel. The role
// editor renders this list.
var AllPermissions = []Permission{
	PermissionCreateAdmin,
	PermissionManageAdmins,
	PermissionManageRoles,
	PermissionManageBranches,
	PermissionManagePlans,
	PermissionManageStores,
	PermissionManageUsers,
	PermissionManageKYC,
	PermissionActivateUser,
	PermissionSendBroadcast,
	PermissionSubscribePlan,
	PermissionApprovePlan,
	PermissionPlaceDeposit,
	PermissionPlaceWithdrawal,
	PermissionApproveDeposit,
	PermissionApproveWithdrawal,
}

func IsValidPermission(p Permission) bool {
	if p == PermissionAll {
		return true
	}
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// PermissionSet is an ordered permission list with set semantics.
type PermissionSet []Permission

func (s PermissionSet) Has(p Permission) bool {
	for _, held := range s {
		if held == p {
			return true
		}
	}
	return false
}

func (s PermissionSet) HasAll() bool {
	return s.Has(PermissionAll)
}

type Role struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name        string              `json:"name" bson:"name" validate:"required,min=2,max=50"`
	Permissions PermissionSet       `json:"permissions" bson:"permissions"`
	RoleType    RoleType            `json:"role_type" bson:"role_type" validate:"required"`
	BranchID    *primitive.ObjectID `json:"branch_id" bson:"branch_id"`
	SuperAdmin  bool                `json:"super_admin" bson:"super_admin"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}

// EffectivePermissions collapses a super-admin role to the "all" sentinel.
// The flag is explicit on the document; the role name carries no meaning.
func (r *Role) EffectivePermissions() PermissionSet {
	if r.SuperAdmin {
		return PermissionSet{PermissionAll}
	}
	return r.Permissions
}
