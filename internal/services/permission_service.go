package services

import (
	"coopsave/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is a signed-in admin with their role resolved. Permissions carries
// the role's effective set, which collapses to the "all" sentinel for a
// super admin role.
type Actor struct {
	AdminID     primitive.ObjectID
	RoleID      primitive.ObjectID
	RoleType    models.RoleType
	BranchID    *primitive.ObjectID
	Permissions models.PermissionSet
	SuperAdmin  bool
}

// Target describes what an action is aimed at. A zero Target means the
// action has no per-record scope, branch or user fields narrow it.
type Target struct {
	BranchID *primitive.ObjectID
	User     *models.User
}

// PermissionService decides authorization. Decisions are pure functions of
// the actor and target so they are cheap to evaluate on every request.
type PermissionService interface {
	CanPerform(actor *Actor, permission models.Permission, target *Target) bool
	ActorFromAdmin(admin *models.Admin, role *models.Role) *Actor
}

type permissionService struct{}

func NewPermissionService() PermissionService {
	return &permissionService{}
}

// CanPerform grants only when the permission is held and the target falls
// inside the role's scope. Any missing piece denies.
func (s *permissionService) CanPerform(actor *Actor, permission models.Permission, target *Target) bool {
	if actor == nil {
		return false
	}
	if !models.IsValidPermission(permission) {
		return false
	}
	if !actor.Permissions.HasAll() && !actor.Permissions.Has(permission) {
		return false
	}

	return s.inScope(actor, target)
}

func (s *permissionService) inScope(actor *Actor, target *Target) bool {
	// The "all" sentinel is unconditional wherever it appears, not only
	// through the super admin flag.
	if actor.SuperAdmin || actor.Permissions.HasAll() {
		return true
	}

	switch actor.RoleType {
	case models.RoleTypeGeneral:
		return true

	case models.RoleTypeBranch:
		if target == nil || (target.BranchID == nil && target.User == nil) {
			// Branch roles keep their unscoped operations, list screens
			// filter to the branch downstream.
			return true
		}
		if actor.BranchID == nil {
			return false
		}
		if target.BranchID != nil {
			return *target.BranchID == *actor.BranchID
		}
		if target.User != nil {
			return target.User.BranchID != nil && *target.User.BranchID == *actor.BranchID
		}
		return false

	case models.RoleTypeAssigned:
		if target == nil || target.User == nil {
			// Assigned roles can still run user-independent operations.
			return target == nil || target.BranchID == nil
		}
		return target.User.IsManagedBy(actor.AdminID)
	}

	// Unknown role types deny.
	return false
}

// ActorFromAdmin builds the request actor. A nil role yields an actor with
// no permissions, which denies everything.
func (s *permissionService) ActorFromAdmin(admin *models.Admin, role *models.Role) *Actor {
	actor := &Actor{
		AdminID:  admin.ID,
		BranchID: admin.BranchID,
	}

	if role == nil {
		return actor
	}

	actor.RoleID = role.ID
	actor.RoleType = role.RoleType
	actor.Permissions = role.EffectivePermissions()
	actor.SuperAdmin = role.SuperAdmin

	// A branch role's scope comes from the role itself when set, otherwise
	// from the admin's own branch.
	if role.RoleType == models.RoleTypeBranch && role.BranchID != nil {
		actor.BranchID = role.BranchID
	}

	return actor
}
