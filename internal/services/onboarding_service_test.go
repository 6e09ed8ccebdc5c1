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
	"coopsave/pkg/authn"
	"coopsave/pkg/banking"
)

type onboardingFixture struct {
	prospectRepo  *MockProspectRepository
	userRepo      *MockUserRepository
	adminRepo     *MockAdminRepository
	auditLogRepo  *MockAuditLogRepository
	authProvider  *MockAuthProvider
	bankVerifier  *MockBankVerifier
	notifications *MockNotificationService
	service       OnboardingService
}

func newOnboardingFixture(t *testing.T) *onboardingFixture {
	f := &onboardingFixture{
		prospectRepo:  new(MockProspectRepository),
		userRepo:      new(MockUserRepository),
		adminRepo:     new(MockAdminRepository),
		auditLogRepo:  new(MockAuditLogRepository),
		authProvider:  new(MockAuthProvider),
		bankVerifier:  new(MockBankVerifier),
		notifications: new(MockNotificationService),
	}
	f.service = NewOnboardingService(
		f.prospectRepo, f.userRepo, f.adminRepo, f.auditLogRepo,
		NewPermissionService(), f.authProvider, f.bankVerifier, f.notifications, testLogger(t),
	)

	f.auditLogRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	return f
}

func validRegistration() *RegisterProspectRequest {
	return &RegisterProspectRequest{
		Name:          "Chidi Eze",
		Email:         "chidi@example.com",
		Phone:         "+2348031234567",
		State:         "Lagos",
		LGA:           "Ikeja",
		StreetAddress: "12 Allen Avenue",
	}
}

func TestRegisterProspect(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts a new phone number", func(t *testing.T) {
		f := newOnboardingFixture(t)

		f.prospectRepo.On("GetByPhone", mock.Anything, mock.Anything).Return(nil, interfaces.ErrNotFound)
		f.userRepo.On("GetByPhone", mock.Anything, mock.Anything).Return(nil, interfaces.ErrNotFound)
		f.prospectRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Prospect")).Return(nil)

		prospect, err := f.service.RegisterProspect(ctx, validRegistration())
		require.NoError(t, err)
		assert.Equal(t, models.KYCStatusPending, prospect.KYC)
	})

	t.Run("rejects a phone already held by a prospect", func(t *testing.T) {
		f := newOnboardingFixture(t)

		f.prospectRepo.On("GetByPhone", mock.Anything, mock.Anything).Return(&models.Prospect{}, nil)

		_, err := f.service.RegisterProspect(ctx, validRegistration())
		assert.ErrorIs(t, err, ErrPhoneTaken)
	})

	t.Run("rejects a phone already held by a user", func(t *testing.T) {
		f := newOnboardingFixture(t)

		f.prospectRepo.On("GetByPhone", mock.Anything, mock.Anything).Return(nil, interfaces.ErrNotFound)
		f.userRepo.On("GetByPhone", mock.Anything, mock.Anything).Return(&models.User{}, nil)

		_, err := f.service.RegisterProspect(ctx, validRegistration())
		assert.ErrorIs(t, err, ErrPhoneTaken)
	})
}

func TestConvertProspect(t *testing.T) {
	ctx := context.Background()
	actor := generalActor(models.PermissionManageUsers)

	prospect := &models.Prospect{
		ID:    primitive.NewObjectID(),
		Name:  "Chidi Eze",
		Email: "chidi@example.com",
		Phone: "+2348031234567",
		KYC:   models.KYCStatusApproved,
	}

	t.Run("creates user then deletes prospect", func(t *testing.T) {
		f := newOnboardingFixture(t)

		f.prospectRepo.On("GetByID", mock.Anything, prospect.ID).Return(prospect, nil)
		f.userRepo.On("GetByConvertedFrom", mock.Anything, prospect.ID).Return(nil, interfaces.ErrNotFound)
		f.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
		f.prospectRepo.On("Delete", mock.Anything, prospect.ID).Return(nil)

		user, err := f.service.ConvertProspect(ctx, actor, prospect.ID)
		require.NoError(t, err)
		assert.Equal(t, prospect.Phone, user.Phone)
		assert.Equal(t, models.UserStatusPending, user.Status)
		require.NotNil(t, user.ConvertedFrom)
		assert.Equal(t, prospect.ID, *user.ConvertedFrom)
	})

	t.Run("re-conversion reuses the existing user", func(t *testing.T) {
		f := newOnboardingFixture(t)
		converted := &models.User{ID: primitive.NewObjectID(), ConvertedFrom: &prospect.ID}

		f.prospectRepo.On("GetByID", mock.Anything, prospect.ID).Return(prospect, nil)
		f.userRepo.On("GetByConvertedFrom", mock.Anything, prospect.ID).Return(converted, nil)
		f.prospectRepo.On("Delete", mock.Anything, prospect.ID).Return(nil)

		user, err := f.service.ConvertProspect(ctx, actor, prospect.ID)
		require.NoError(t, err)
		assert.Equal(t, converted.ID, user.ID)
		f.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost prospect delete does not fail the conversion", func(t *testing.T) {
		f := newOnboardingFixture(t)

		f.prospectRepo.On("GetByID", mock.Anything, prospect.ID).Return(prospect, nil)
		f.userRepo.On("GetByConvertedFrom", mock.Anything, prospect.ID).Return(nil, interfaces.ErrNotFound)
		f.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
		f.prospectRepo.On("Delete", mock.Anything, prospect.ID).Return(assert.AnError)

		_, err := f.service.ConvertProspect(ctx, actor, prospect.ID)
		assert.NoError(t, err)
	})
}

func TestActivateUser(t *testing.T) {
	ctx := context.Background()
	actor := generalActor(models.PermissionActivateUser)

	activatable := func() *models.User {
		return &models.User{
			ID:     primitive.NewObjectID(),
			Name:   "Ngozi Okafor",
			Phone:  "+2348012345678",
			Email:  "ngozi@example.com",
			Status: models.UserStatusPending,
			KYC:    models.KYCStatusApproved,
			Admins: []primitive.ObjectID{primitive.NewObjectID()},
		}
	}

	t.Run("rejects without approved KYC", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := activatable()
		user.KYC = models.KYCStatusPending

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		_, err := f.service.ActivateUser(ctx, actor, user.ID)
		assert.ErrorIs(t, err, ErrKYCNotApproved)
	})

	t.Run("rejects without an assigned admin", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := activatable()
		user.Admins = nil

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		_, err := f.service.ActivateUser(ctx, actor, user.ID)
		assert.ErrorIs(t, err, ErrNoAssignedAdmin)
	})

	t.Run("rejects an already active user", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := activatable()
		user.Status = models.UserStatusActive

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		_, err := f.service.ActivateUser(ctx, actor, user.ID)
		assert.ErrorIs(t, err, ErrAlreadyActive)
	})

	t.Run("runs credential, status and notify stages in order", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := activatable()
		identity := &authn.Identity{UID: "firebase-uid-1", Phone: user.Phone}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.userRepo.On("Update", mock.Anything, user.ID, mock.Anything).Return(nil)
		f.authProvider.On("CreateCredential", mock.Anything, mock.MatchedBy(func(r *authn.CreateCredentialRequest) bool {
			return r.Phone == user.Phone && r.Password != ""
		})).Return(identity, nil)
		f.notifications.On("NotifyUserActivated", mock.Anything, user, mock.MatchedBy(func(p string) bool {
			return p != ""
		})).Return()

		activated, err := f.service.ActivateUser(ctx, actor, user.ID)
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusActive, activated.Status)
		assert.Equal(t, identity.UID, activated.UID)
		assert.Nil(t, activated.Activation)
		f.notifications.AssertExpectations(t)
	})

	t.Run("existing credential is looked up and re-enabled instead of failing", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := activatable()
		identity := &authn.Identity{UID: "firebase-uid-2", Phone: user.Phone}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.userRepo.On("Update", mock.Anything, user.ID, mock.Anything).Return(nil)
		f.authProvider.On("CreateCredential", mock.Anything, mock.Anything).Return(nil, authn.ErrAlreadyExists)
		f.authProvider.On("LookupByPhone", mock.Anything, user.Phone).Return(identity, nil)
		f.authProvider.On("EnableCredential", mock.Anything, identity.UID).Return(nil)
		f.notifications.On("NotifyUserActivated", mock.Anything, user, mock.Anything).Return()

		activated, err := f.service.ActivateUser(ctx, actor, user.ID)
		require.NoError(t, err)
		assert.Equal(t, identity.UID, activated.UID)
		f.authProvider.AssertExpectations(t)
	})

	t.Run("re-activating a restricted user re-enables sign-in", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := activatable()
		user.Status = models.UserStatusRestricted
		user.UID = "firebase-uid-3"
		identity := &authn.Identity{UID: user.UID, Phone: user.Phone}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.userRepo.On("Update", mock.Anything, user.ID, mock.Anything).Return(nil)
		f.authProvider.On("CreateCredential", mock.Anything, mock.Anything).Return(nil, authn.ErrAlreadyExists)
		f.authProvider.On("LookupByPhone", mock.Anything, user.Phone).Return(identity, nil)
		f.authProvider.On("EnableCredential", mock.Anything, user.UID).Return(nil)
		f.notifications.On("NotifyUserActivated", mock.Anything, user, mock.Anything).Return()

		activated, err := f.service.ActivateUser(ctx, actor, user.ID)
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusActive, activated.Status)
		f.authProvider.AssertCalled(t, "EnableCredential", mock.Anything, user.UID)
	})
}

func TestResumeActivation(t *testing.T) {
	ctx := context.Background()

	t.Run("no marker is a no-op", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := &models.User{ID: primitive.NewObjectID()}

		require.NoError(t, f.service.ResumeActivation(ctx, user))
		f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("regressed preconditions drop the marker", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := &models.User{
			ID:         primitive.NewObjectID(),
			KYC:        models.KYCStatusRejected,
			Activation: &models.ActivationMarker{Stage: models.ActivationStageStatus, StartedAt: time.Now()},
		}

		f.userRepo.On("Update", mock.Anything, user.ID, map[string]interface{}{"activation": nil}).Return(nil)

		require.NoError(t, f.service.ResumeActivation(ctx, user))
		f.authProvider.AssertNotCalled(t, "CreateCredential", mock.Anything, mock.Anything)
	})

	t.Run("resume at status stage recovers the uid and re-enables it", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := &models.User{
			ID:         primitive.NewObjectID(),
			Phone:      "+2348012345678",
			Status:     models.UserStatusPending,
			KYC:        models.KYCStatusApproved,
			Admins:     []primitive.ObjectID{primitive.NewObjectID()},
			Activation: &models.ActivationMarker{Stage: models.ActivationStageStatus, StartedAt: time.Now()},
		}
		identity := &authn.Identity{UID: "firebase-uid-9", Phone: user.Phone}

		f.userRepo.On("Update", mock.Anything, user.ID, mock.Anything).Return(nil)
		f.authProvider.On("LookupByPhone", mock.Anything, user.Phone).Return(identity, nil)
		f.authProvider.On("EnableCredential", mock.Anything, identity.UID).Return(nil)
		f.notifications.On("NotifyUserActivated", mock.Anything, user, "").Return()

		require.NoError(t, f.service.ResumeActivation(ctx, user))
		assert.Equal(t, identity.UID, user.UID)
		f.authProvider.AssertNotCalled(t, "CreateCredential", mock.Anything, mock.Anything)
		f.authProvider.AssertExpectations(t)
	})

	t.Run("resume at notify stage sends no temp password", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := &models.User{
			ID:         primitive.NewObjectID(),
			Phone:      "+2348012345678",
			UID:        "firebase-uid-3",
			Status:     models.UserStatusActive,
			KYC:        models.KYCStatusApproved,
			Admins:     []primitive.ObjectID{primitive.NewObjectID()},
			Activation: &models.ActivationMarker{Stage: models.ActivationStageNotify, StartedAt: time.Now()},
		}

		f.userRepo.On("Update", mock.Anything, user.ID, map[string]interface{}{"activation": nil}).Return(nil)
		f.notifications.On("NotifyUserActivated", mock.Anything, user, "").Return()

		require.NoError(t, f.service.ResumeActivation(ctx, user))
		f.authProvider.AssertNotCalled(t, "CreateCredential", mock.Anything, mock.Anything)
		f.notifications.AssertExpectations(t)
	})
}

func TestSetBankAccount(t *testing.T) {
	ctx := context.Background()
	actor := generalActor(models.PermissionManageUsers)

	t.Run("stores the resolved account detail", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := activeUser()
		detail := &banking.AccountDetail{
			AccountName:   "NGOZI OKAFOR",
			AccountNumber: "0123456789",
			BankName:      "Guaranty Trust Bank",
			BankCode:      "058",
		}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.bankVerifier.On("ResolveAccount", mock.Anything, "0123456789", "058").Return(detail, nil)
		f.userRepo.On("Update", mock.Anything, user.ID, mock.Anything).Return(nil)

		updated, err := f.service.SetBankAccount(ctx, actor, user.ID, &BankAccountRequest{
			AccountNumber: "0123456789",
			BankCode:      "058",
		})
		require.NoError(t, err)
		require.NotNil(t, updated.BankAccount)
		assert.Equal(t, "NGOZI OKAFOR", updated.BankAccount.AccountName)
	})

	t.Run("unresolvable account is rejected", func(t *testing.T) {
		f := newOnboardingFixture(t)
		user := activeUser()

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.bankVerifier.On("ResolveAccount", mock.Anything, "0123456789", "058").Return(nil, assert.AnError)

		_, err := f.service.SetBankAccount(ctx, actor, user.ID, &BankAccountRequest{
			AccountNumber: "0123456789",
			BankCode:      "058",
		})
		assert.ErrorIs(t, err, ErrAccountResolution)
	})
}

func TestListUsersScoping(t *testing.T) {
	ctx := context.Background()

	t.Run("branch role lists its branch", func(t *testing.T) {
		f := newOnboardingFixture(t)
		branchID := primitive.NewObjectID()
		actor := &Actor{
			AdminID:     primitive.NewObjectID(),
			RoleType:    models.RoleTypeBranch,
			BranchID:    &branchID,
			Permissions: models.PermissionSet{models.PermissionManageUsers},
		}

		f.userRepo.On("GetByBranch", mock.Anything, branchID, mock.Anything).Return([]*models.User{}, int64(0), nil)

		_, _, err := f.service.ListUsers(ctx, actor, nil)
		require.NoError(t, err)
		f.userRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("assigned role lists managed users", func(t *testing.T) {
		f := newOnboardingFixture(t)
		actor := &Actor{
			AdminID:     primitive.NewObjectID(),
			RoleType:    models.RoleTypeAssigned,
			Permissions: models.PermissionSet{models.PermissionManageUsers},
		}

		f.userRepo.On("GetByAssignedAdmin", mock.Anything, actor.AdminID, mock.Anything).Return([]*models.User{}, int64(0), nil)

		_, _, err := f.service.ListUsers(ctx, actor, nil)
		require.NoError(t, err)
	})

	t.Run("super admin sees everything", func(t *testing.T) {
		f := newOnboardingFixture(t)
		actor := &Actor{
			AdminID:     primitive.NewObjectID(),
			RoleType:    models.RoleTypeAssigned,
			SuperAdmin:  true,
			Permissions: models.PermissionSet{models.PermissionAll},
		}

		f.userRepo.On("List", mock.Anything, mock.Anything).Return([]*models.User{}, int64(0), nil)

		_, _, err := f.service.ListUsers(ctx, actor, nil)
		require.NoError(t, err)
	})
}
