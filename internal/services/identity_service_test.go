package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coopsave/internal/models"
	"coopsave/internal/repositories/interfaces"
	"coopsave/internal/utils"
	"coopsave/pkg/authn"
)

type identityFixture struct {
	adminRepo    *MockAdminRepository
	roleRepo     *MockRoleRepository
	auditLogRepo *MockAuditLogRepository
	authProvider *MockAuthProvider
	service      IdentityService
}

func newIdentityFixture(t *testing.T) *identityFixture {
	f := &identityFixture{
		adminRepo:    new(MockAdminRepository),
		roleRepo:     new(MockRoleRepository),
		auditLogRepo: new(MockAuditLogRepository),
		authProvider: new(MockAuthProvider),
	}
	f.service = NewIdentityService(
		f.adminRepo, f.roleRepo, f.auditLogRepo,
		NewPermissionService(), f.authProvider,
		"test-secret", time.Hour, testLogger(t),
	)

	f.auditLogRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	return f
}

func activeAdmin() *models.Admin {
	roleID := primitive.NewObjectID()
	return &models.Admin{
		ID:     primitive.NewObjectID(),
		Email:  "amina@coopsave.ng",
		Phone:  "+2348090000001",
		RoleID: &roleID,
		Status: models.AdminStatusActive,
		UID:    "firebase-admin-1",
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token for a known admin", func(t *testing.T) {
		f := newIdentityFixture(t)
		admin := activeAdmin()
		role := &models.Role{
			ID:          *admin.RoleID,
			Name:        "Operations",
			RoleType:    models.RoleTypeGeneral,
			Permissions: models.PermissionSet{models.PermissionManageUsers},
		}

		f.authProvider.On("VerifyCredential", mock.Anything, "id-token").
			Return(&authn.Identity{UID: admin.UID, Email: admin.Email}, nil)
		f.adminRepo.On("GetByUID", mock.Anything, admin.UID).Return(admin, nil)
		f.roleRepo.On("GetByID", mock.Anything, role.ID).Return(role, nil)

		response, err := f.service.Login(ctx, &LoginRequest{IDToken: "id-token"})
		require.NoError(t, err)
		assert.NotEmpty(t, response.Token.Token)
		assert.Equal(t, role.Permissions, response.Permissions)

		claims, err := utils.ValidateToken(response.Token.Token, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, claims.AdminID)
	})

	t.Run("rejects an invalid credential", func(t *testing.T) {
		f := newIdentityFixture(t)

		f.authProvider.On("VerifyCredential", mock.Anything, "bad-token").Return(nil, authn.ErrUnauthorized)

		_, err := f.service.Login(ctx, &LoginRequest{IDToken: "bad-token"})
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("unprovisioned credential gets a placeholder session", func(t *testing.T) {
		f := newIdentityFixture(t)

		f.authProvider.On("VerifyCredential", mock.Anything, "id-token").
			Return(&authn.Identity{UID: "stranger", Email: "stranger@coopsave.ng"}, nil)
		f.adminRepo.On("GetByUID", mock.Anything, "stranger").Return(nil, interfaces.ErrNotFound)
		f.adminRepo.On("GetByEmail", mock.Anything, "stranger@coopsave.ng").Return(nil, interfaces.ErrNotFound)

		response, err := f.service.Login(ctx, &LoginRequest{IDToken: "id-token"})
		require.NoError(t, err)
		assert.Equal(t, models.AdminStatusPending, response.Admin.Status)
		assert.Equal(t, "stranger", response.Admin.UID)
		assert.True(t, response.Admin.ID.IsZero())
		assert.Nil(t, response.Role)
		assert.Empty(t, response.Permissions)

		// Nothing to audit for an admin that has no record yet.
		f.auditLogRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a deactivated admin", func(t *testing.T) {
		f := newIdentityFixture(t)
		admin := activeAdmin()
		admin.Status = models.AdminStatusInactive

		f.authProvider.On("VerifyCredential", mock.Anything, "id-token").
			Return(&authn.Identity{UID: admin.UID, Email: admin.Email}, nil)
		f.adminRepo.On("GetByUID", mock.Anything, admin.UID).Return(admin, nil)

		_, err := f.service.Login(ctx, &LoginRequest{IDToken: "id-token"})
		assert.ErrorIs(t, err, ErrAccessRevoked)
	})

	t.Run("first sign-in matches by email and backfills the uid", func(t *testing.T) {
		f := newIdentityFixture(t)
		admin := activeAdmin()
		admin.UID = ""
		role := &models.Role{ID: *admin.RoleID, RoleType: models.RoleTypeGeneral}

		f.authProvider.On("VerifyCredential", mock.Anything, "id-token").
			Return(&authn.Identity{UID: "fresh-uid", Email: admin.Email}, nil)
		f.adminRepo.On("GetByUID", mock.Anything, "fresh-uid").Return(nil, interfaces.ErrNotFound)
		f.adminRepo.On("GetByEmail", mock.Anything, admin.Email).Return(admin, nil)
		f.adminRepo.On("Update", mock.Anything, admin.ID, map[string]interface{}{"uid": "fresh-uid"}).Return(nil)
		f.roleRepo.On("GetByID", mock.Anything, role.ID).Return(role, nil)

		response, err := f.service.Login(ctx, &LoginRequest{IDToken: "id-token"})
		require.NoError(t, err)
		assert.Equal(t, "fresh-uid", response.Admin.UID)
		f.adminRepo.AssertExpectations(t)
	})

	t.Run("deleted role yields a session with no permissions", func(t *testing.T) {
		f := newIdentityFixture(t)
		admin := activeAdmin()

		f.authProvider.On("VerifyCredential", mock.Anything, "id-token").
			Return(&authn.Identity{UID: admin.UID, Email: admin.Email}, nil)
		f.adminRepo.On("GetByUID", mock.Anything, admin.UID).Return(admin, nil)
		f.roleRepo.On("GetByID", mock.Anything, *admin.RoleID).Return(nil, interfaces.ErrNotFound)

		response, err := f.service.Login(ctx, &LoginRequest{IDToken: "id-token"})
		require.NoError(t, err)
		assert.Nil(t, response.Role)
		assert.Empty(t, response.Permissions)
	})
}

func TestResolveActor(t *testing.T) {
	ctx := context.Background()

	t.Run("builds the actor from fresh admin and role", func(t *testing.T) {
		f := newIdentityFixture(t)
		admin := activeAdmin()
		role := &models.Role{
			ID:          *admin.RoleID,
			RoleType:    models.RoleTypeGeneral,
			SuperAdmin:  true,
			Permissions: models.PermissionSet{models.PermissionManageUsers},
		}

		f.adminRepo.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)
		f.roleRepo.On("GetByID", mock.Anything, role.ID).Return(role, nil)

		actor, err := f.service.ResolveActor(ctx, admin.ID)
		require.NoError(t, err)
		assert.True(t, actor.SuperAdmin)
		assert.Equal(t, models.PermissionSet{models.PermissionAll}, actor.Permissions)
	})

	t.Run("revoked admin is refused mid-session", func(t *testing.T) {
		f := newIdentityFixture(t)
		admin := activeAdmin()
		admin.Status = models.AdminStatusInactive

		f.adminRepo.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)

		_, err := f.service.ResolveActor(ctx, admin.ID)
		assert.ErrorIs(t, err, ErrAccessRevoked)
	})

	t.Run("deleted admin is refused", func(t *testing.T) {
		f := newIdentityFixture(t)
		adminID := primitive.NewObjectID()

		f.adminRepo.On("GetByID", mock.Anything, adminID).Return(nil, interfaces.ErrNotFound)

		_, err := f.service.ResolveActor(ctx, adminID)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})
}
