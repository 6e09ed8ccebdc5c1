package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSubscriptionBlocks(t *testing.T) {
	planID := primitive.NewObjectID()

	tests := []struct {
		name   string
		sub    Subscription
		blocks bool
	}{
		{"pending blocks", Subscription{PlanID: planID, Status: SubscriptionStatusPending}, true},
		{"approved blocks", Subscription{PlanID: planID, Status: SubscriptionStatusApproved}, true},
		{"declined frees the plan", Subscription{PlanID: planID, Status: SubscriptionStatusDeclined}, false},
		{"other plan never blocks", Subscription{PlanID: primitive.NewObjectID(), Status: SubscriptionStatusApproved}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.blocks, tt.sub.Blocks(planID))
		})
	}
}

func TestUserCanActivate(t *testing.T) {
	adminID := primitive.NewObjectID()

	assert.True(t, (&User{KYC: KYCStatusApproved, Admins: []primitive.ObjectID{adminID}}).CanActivate())
	assert.False(t, (&User{KYC: KYCStatusPending, Admins: []primitive.ObjectID{adminID}}).CanActivate())
	assert.False(t, (&User{KYC: KYCStatusApproved}).CanActivate())
}

func TestUserIsManagedBy(t *testing.T) {
	adminID := primitive.NewObjectID()
	user := &User{Admins: []primitive.ObjectID{primitive.NewObjectID(), adminID}}

	assert.True(t, user.IsManagedBy(adminID))
	assert.False(t, user.IsManagedBy(primitive.NewObjectID()))
}

func TestEffectivePermissions(t *testing.T) {
	role := &Role{Permissions: PermissionSet{PermissionManageUsers}}
	assert.Equal(t, PermissionSet{PermissionManageUsers}, role.EffectivePermissions())

	// The explicit flag collapses the set regardless of what is stored.
	role.SuperAdmin = true
	assert.Equal(t, PermissionSet{PermissionAll}, role.EffectivePermissions())
}

func TestIsValidPermission(t *testing.T) {
	assert.True(t, IsValidPermission(PermissionAll))
	assert.True(t, IsValidPermission(PermissionApproveWithdrawal))
	assert.False(t, IsValidPermission(Permission("Drop Tables")))
}

func TestTransactionApprovalPermission(t *testing.T) {
	deposit := &Transaction{Type: TransactionTypeDeposit}
	withdraw := &Transaction{Type: TransactionTypeWithdraw}

	assert.Equal(t, PermissionApproveDeposit, deposit.ApprovalPermission())
	assert.Equal(t, PermissionApproveWithdrawal, withdraw.ApprovalPermission())
}
