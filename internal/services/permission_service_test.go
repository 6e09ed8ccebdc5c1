package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coopsave/internal/models"
)

func TestCanPerformFailsClosed(t *testing.T) {
	svc := NewPermissionService()

	t.Run("nil actor denies", func(t *testing.T) {
		assert.False(t, svc.CanPerform(nil, models.PermissionManageUsers, nil))
	})

	t.Run("unknown permission denies even with all", func(t *testing.T) {
		actor := &Actor{
			RoleType:    models.RoleTypeGeneral,
			Permissions: models.PermissionSet{models.PermissionAll},
		}
		assert.False(t, svc.CanPerform(actor, models.Permission("Delete Everything"), nil))
	})

	t.Run("unknown role type denies", func(t *testing.T) {
		actor := &Actor{
			RoleType:    models.RoleType("regional"),
			Permissions: models.PermissionSet{models.PermissionManageUsers},
		}
		assert.False(t, svc.CanPerform(actor, models.PermissionManageUsers, nil))
	})

	t.Run("missing permission denies", func(t *testing.T) {
		actor := &Actor{
			RoleType:    models.RoleTypeGeneral,
			Permissions: models.PermissionSet{models.PermissionManagePlans},
		}
		assert.False(t, svc.CanPerform(actor, models.PermissionManageUsers, nil))
	})
}

func TestCanPerformGeneralScope(t *testing.T) {
	svc := NewPermissionService()
	branchID := primitive.NewObjectID()

	actor := &Actor{
		RoleType:    models.RoleTypeGeneral,
		Permissions: models.PermissionSet{models.PermissionManageUsers},
	}

	user := &models.User{BranchID: &branchID}
	assert.True(t, svc.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}))
	assert.True(t, svc.CanPerform(actor, models.PermissionManageUsers, &Target{BranchID: &branchID}))
}

func TestCanPerformBranchScope(t *testing.T) {
	svc := NewPermissionService()
	ownBranch := primitive.NewObjectID()
	otherBranch := primitive.NewObjectID()

	actor := &Actor{
		RoleType:    models.RoleTypeBranch,
		BranchID:    &ownBranch,
		Permissions: models.PermissionSet{models.PermissionManageUsers},
	}

	t.Run("same branch user allowed", func(t *testing.T) {
		user := &models.User{BranchID: &ownBranch}
		assert.True(t, svc.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}))
	})

	t.Run("other branch user denied", func(t *testing.T) {
		user := &models.User{BranchID: &otherBranch}
		assert.False(t, svc.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}))
	})

	t.Run("user without branch denied", func(t *testing.T) {
		user := &models.User{}
		assert.False(t, svc.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}))
	})

	t.Run("unscoped operation allowed", func(t *testing.T) {
		assert.True(t, svc.CanPerform(actor, models.PermissionManageUsers, nil))
	})

	t.Run("actor without branch denies scoped target", func(t *testing.T) {
		branchless := &Actor{
			RoleType:    models.RoleTypeBranch,
			Permissions: models.PermissionSet{models.PermissionManageUsers},
		}
		assert.False(t, svc.CanPerform(branchless, models.PermissionManageUsers, &Target{BranchID: &ownBranch}))
	})
}

func TestCanPerformAssignedScope(t *testing.T) {
	svc := NewPermissionService()
	adminID := primitive.NewObjectID()

	actor := &Actor{
		AdminID:     adminID,
		RoleType:    models.RoleTypeAssigned,
		Permissions: models.PermissionSet{models.PermissionManageKYC},
	}

	t.Run("managed user allowed", func(t *testing.T) {
		user := &models.User{Admins: []primitive.ObjectID{primitive.NewObjectID(), adminID}}
		assert.True(t, svc.CanPerform(actor, models.PermissionManageKYC, &Target{User: user}))
	})

	t.Run("unmanaged user denied", func(t *testing.T) {
		user := &models.User{Admins: []primitive.ObjectID{primitive.NewObjectID()}}
		assert.False(t, svc.CanPerform(actor, models.PermissionManageKYC, &Target{User: user}))
	})

	t.Run("branch target denied", func(t *testing.T) {
		branchID := primitive.NewObjectID()
		assert.False(t, svc.CanPerform(actor, models.PermissionManageKYC, &Target{BranchID: &branchID}))
	})
}

func TestCanPerformSuperAdmin(t *testing.T) {
	svc := NewPermissionService()
	branchID := primitive.NewObjectID()

	// Super admins hold the "all" sentinel and skip scope checks entirely.
	actor := &Actor{
		RoleType:    models.RoleTypeAssigned,
		SuperAdmin:  true,
		Permissions: models.PermissionSet{models.PermissionAll},
	}

	user := &models.User{BranchID: &branchID}
	assert.True(t, svc.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}))
	assert.True(t, svc.CanPerform(actor, models.PermissionManageBranches, &Target{BranchID: &branchID}))

	// The sentinel bypasses scope on its own, even without the flag.
	allOnly := &Actor{
		RoleType:    models.RoleTypeBranch,
		Permissions: models.PermissionSet{models.PermissionAll},
	}
	assert.True(t, svc.CanPerform(allOnly, models.PermissionManageUsers, &Target{User: user}))
}

func TestActorFromAdmin(t *testing.T) {
	svc := NewPermissionService()
	adminBranch := primitive.NewObjectID()
	roleBranch := primitive.NewObjectID()

	admin := &models.Admin{
		ID:       primitive.NewObjectID(),
		BranchID: &adminBranch,
	}

	t.Run("nil role yields empty permissions", func(t *testing.T) {
		actor := svc.ActorFromAdmin(admin, nil)
		assert.Equal(t, admin.ID, actor.AdminID)
		assert.Empty(t, actor.Permissions)
		assert.False(t, svc.CanPerform(actor, models.PermissionManageUsers, nil))
	})

	t.Run("super admin role collapses to all", func(t *testing.T) {
		role := &models.Role{
			ID:          primitive.NewObjectID(),
			RoleType:    models.RoleTypeGeneral,
			SuperAdmin:  true,
			Permissions: models.PermissionSet{models.PermissionManagePlans},
		}
		actor := svc.ActorFromAdmin(admin, role)
		assert.True(t, actor.SuperAdmin)
		assert.Equal(t, models.PermissionSet{models.PermissionAll}, actor.Permissions)
	})

	t.Run("branch role overrides admin branch", func(t *testing.T) {
		role := &models.Role{
			ID:       primitive.NewObjectID(),
			RoleType: models.RoleTypeBranch,
			BranchID: &roleBranch,
		}
		actor := svc.ActorFromAdmin(admin, role)
		assert.Equal(t, roleBranch, *actor.BranchID)
	})
}
