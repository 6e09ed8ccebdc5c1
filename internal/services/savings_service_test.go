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
)

type savingsFixture struct {
	subscriptionRepo *MockSubscriptionRepository
	transactionRepo  *MockTransactionRepository
	userRepo         *MockUserRepository
	planRepo         *MockPlanRepository
	auditLogRepo     *MockAuditLogRepository
	notifications    *MockNotificationService
	service          SavingsService
}

func newSavingsFixture(t *testing.T) *savingsFixture {
	f := &savingsFixture{
		subscriptionRepo: new(MockSubscriptionRepository),
		transactionRepo:  new(MockTransactionRepository),
		userRepo:         new(MockUserRepository),
		planRepo:         new(MockPlanRepository),
		auditLogRepo:     new(MockAuditLogRepository),
		notifications:    new(MockNotificationService),
	}
	f.service = NewSavingsService(
		f.subscriptionRepo, f.transactionRepo, f.userRepo, f.planRepo,
		f.auditLogRepo, NewPermissionService(), f.notifications, testLogger(t),
	)

	// Audit writes are best effort and incidental to every flow.
	f.auditLogRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	return f
}

func generalActor(permissions ...models.Permission) *Actor {
	return &Actor{
		AdminID:     primitive.NewObjectID(),
		RoleType:    models.RoleTypeGeneral,
		Permissions: models.PermissionSet(permissions),
	}
}

func activeUser() *models.User {
	return &models.User{
		ID:     primitive.NewObjectID(),
		Name:   "Ngozi Okafor",
		Phone:  "+2348012345678",
		Status: models.UserStatusActive,
		KYC:    models.KYCStatusApproved,
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending subscription", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		plan := &models.Plan{ID: primitive.NewObjectID(), Status: models.PlanStatusActive, TenureMonths: 6}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
		f.subscriptionRepo.On("GetBlocking", mock.Anything, user.ID, plan.ID).Return(nil, interfaces.ErrNotFound)
		f.subscriptionRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Subscription")).Return(nil)

		sub, err := f.service.Subscribe(ctx, generalActor(models.PermissionSubscribePlan), &SubscribeRequest{
			UserID: user.ID,
			PlanID: plan.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, sub.UserID)
		assert.Equal(t, plan.ID, sub.PlanID)
	})

	t.Run("rejects without permission", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		_, err := f.service.Subscribe(ctx, generalActor(models.PermissionManageUsers), &SubscribeRequest{
			UserID: user.ID,
			PlanID: primitive.NewObjectID(),
		})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("rejects inactive user", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		user.Status = models.UserStatusRestricted

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		_, err := f.service.Subscribe(ctx, generalActor(models.PermissionSubscribePlan), &SubscribeRequest{
			UserID: user.ID,
			PlanID: primitive.NewObjectID(),
		})
		assert.ErrorIs(t, err, ErrUserNotActive)
	})

	t.Run("rejects inactive plan", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		plan := &models.Plan{ID: primitive.NewObjectID(), Status: models.PlanStatusInactive}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)

		_, err := f.service.Subscribe(ctx, generalActor(models.PermissionSubscribePlan), &SubscribeRequest{
			UserID: user.ID,
			PlanID: plan.ID,
		})
		assert.ErrorIs(t, err, ErrPlanNotActive)
	})

	t.Run("rejects while a non-declined subscription exists", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		plan := &models.Plan{ID: primitive.NewObjectID(), Status: models.PlanStatusActive}
		existing := &models.Subscription{UserID: user.ID, PlanID: plan.ID, Status: models.SubscriptionStatusPending}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
		f.subscriptionRepo.On("GetBlocking", mock.Anything, user.ID, plan.ID).Return(existing, nil)

		_, err := f.service.Subscribe(ctx, generalActor(models.PermissionSubscribePlan), &SubscribeRequest{
			UserID: user.ID,
			PlanID: plan.ID,
		})
		assert.ErrorIs(t, err, ErrSubscriptionBlocked)
	})
}

func TestResolveSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("approval stamps end date from plan tenure", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		plan := &models.Plan{ID: primitive.NewObjectID(), Status: models.PlanStatusActive, TenureMonths: 9}
		sub := &models.Subscription{
			ID:     primitive.NewObjectID(),
			UserID: user.ID,
			PlanID: plan.ID,
			Status: models.SubscriptionStatusPending,
		}

		f.subscriptionRepo.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)

		var captured map[string]interface{}
		resolved := &models.Subscription{ID: sub.ID, UserID: user.ID, PlanID: plan.ID, Status: models.SubscriptionStatusApproved}
		f.subscriptionRepo.On("ResolveIfPending", mock.Anything, sub.ID, models.SubscriptionStatusApproved, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(3).(map[string]interface{})
			}).
			Return(resolved, nil)
		f.notifications.On("NotifySubscriptionResolved", mock.Anything, user, resolved).Return()

		got, err := f.service.ResolveSubscription(ctx, generalActor(models.PermissionApprovePlan), sub.ID, true)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionStatusApproved, got.Status)

		start := captured["start_date"].(time.Time)
		end := captured["end_date"].(*time.Time)
		assert.WithinDuration(t, start.AddDate(0, plan.TenureMonths, 0), *end, time.Second)
	})

	t.Run("decline keeps dates unset", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		sub := &models.Subscription{
			ID:     primitive.NewObjectID(),
			UserID: user.ID,
			PlanID: primitive.NewObjectID(),
			Status: models.SubscriptionStatusPending,
		}
		resolved := &models.Subscription{ID: sub.ID, UserID: user.ID, Status: models.SubscriptionStatusDeclined}

		f.subscriptionRepo.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.subscriptionRepo.On("ResolveIfPending", mock.Anything, sub.ID, models.SubscriptionStatusDeclined, map[string]interface{}{}).Return(resolved, nil)
		f.notifications.On("NotifySubscriptionResolved", mock.Anything, user, resolved).Return()

		got, err := f.service.ResolveSubscription(ctx, generalActor(models.PermissionApprovePlan), sub.ID, false)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionStatusDeclined, got.Status)
		f.planRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("losing a concurrent resolution reports already resolved", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		sub := &models.Subscription{
			ID:     primitive.NewObjectID(),
			UserID: user.ID,
			PlanID: primitive.NewObjectID(),
			Status: models.SubscriptionStatusPending,
		}

		f.subscriptionRepo.On("GetByID", mock.Anything, sub.ID).Return(sub, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.subscriptionRepo.On("ResolveIfPending", mock.Anything, sub.ID, models.SubscriptionStatusDeclined, mock.Anything).Return(nil, interfaces.ErrNotFound)

		_, err := f.service.ResolveSubscription(ctx, generalActor(models.PermissionApprovePlan), sub.ID, false)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})
}

func TestPlaceTransaction(t *testing.T) {
	ctx := context.Background()

	approvedSub := func(userID, planID primitive.ObjectID) *models.Subscription {
		return &models.Subscription{UserID: userID, PlanID: planID, Status: models.SubscriptionStatusApproved}
	}

	t.Run("deposit requires place deposit permission", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		planID := primitive.NewObjectID()

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		// Withdrawal permission alone does not cover deposits.
		_, err := f.service.PlaceTransaction(ctx, generalActor(models.PermissionPlaceWithdrawal), &PlaceTransactionRequest{
			UserID: user.ID,
			PlanID: planID,
			Type:   models.TransactionTypeDeposit,
			Amount: 5000,
		})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("deposit placed against approved subscription", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		planID := primitive.NewObjectID()

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.subscriptionRepo.On("GetBlocking", mock.Anything, user.ID, planID).Return(approvedSub(user.ID, planID), nil)
		f.transactionRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Transaction")).Return(nil)

		txn, err := f.service.PlaceTransaction(ctx, generalActor(models.PermissionPlaceDeposit), &PlaceTransactionRequest{
			UserID: user.ID,
			PlanID: planID,
			Type:   models.TransactionTypeDeposit,
			Amount: 5000,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TransactionTypeDeposit, txn.Type)
	})

	t.Run("pending subscription does not back transactions", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		planID := primitive.NewObjectID()
		pending := &models.Subscription{UserID: user.ID, PlanID: planID, Status: models.SubscriptionStatusPending}

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.subscriptionRepo.On("GetBlocking", mock.Anything, user.ID, planID).Return(pending, nil)

		_, err := f.service.PlaceTransaction(ctx, generalActor(models.PermissionPlaceDeposit), &PlaceTransactionRequest{
			UserID: user.ID,
			PlanID: planID,
			Type:   models.TransactionTypeDeposit,
			Amount: 5000,
		})
		assert.ErrorIs(t, err, ErrNoApprovedSubscription)
	})

	t.Run("withdrawal checked against approved balance", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		planID := primitive.NewObjectID()

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.subscriptionRepo.On("GetBlocking", mock.Anything, user.ID, planID).Return(approvedSub(user.ID, planID), nil)
		f.transactionRepo.On("GetByUserAndPlan", mock.Anything, user.ID, planID).Return([]*models.Transaction{
			{PlanID: planID, Type: models.TransactionTypeDeposit, Amount: 10000, Status: models.TransactionStatusApproved},
			{PlanID: planID, Type: models.TransactionTypeWithdraw, Amount: 4000, Status: models.TransactionStatusApproved},
			// Pending deposits never count toward the balance.
			{PlanID: planID, Type: models.TransactionTypeDeposit, Amount: 50000, Status: models.TransactionStatusPending},
		}, nil)

		_, err := f.service.PlaceTransaction(ctx, generalActor(models.PermissionPlaceWithdrawal), &PlaceTransactionRequest{
			UserID: user.ID,
			PlanID: planID,
			Type:   models.TransactionTypeWithdraw,
			Amount: 6001,
		})
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("withdrawal of the whole balance is allowed", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		planID := primitive.NewObjectID()

		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.subscriptionRepo.On("GetBlocking", mock.Anything, user.ID, planID).Return(approvedSub(user.ID, planID), nil)
		f.transactionRepo.On("GetByUserAndPlan", mock.Anything, user.ID, planID).Return([]*models.Transaction{
			{PlanID: planID, Type: models.TransactionTypeDeposit, Amount: 10000, Status: models.TransactionStatusApproved},
			{PlanID: planID, Type: models.TransactionTypeWithdraw, Amount: 4000, Status: models.TransactionStatusApproved},
		}, nil)
		f.transactionRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Transaction")).Return(nil)

		txn, err := f.service.PlaceTransaction(ctx, generalActor(models.PermissionPlaceWithdrawal), &PlaceTransactionRequest{
			UserID: user.ID,
			PlanID: planID,
			Type:   models.TransactionTypeWithdraw,
			Amount: 6000,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusPending, txn.Status)
	})
}

func TestResolveTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("withdrawal approval needs withdrawal permission", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		txn := &models.Transaction{
			ID:     primitive.NewObjectID(),
			UserID: user.ID,
			PlanID: primitive.NewObjectID(),
			Type:   models.TransactionTypeWithdraw,
			Amount: 2000,
			Status: models.TransactionStatusPending,
		}

		f.transactionRepo.On("GetByID", mock.Anything, txn.ID).Return(txn, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		_, err := f.service.ResolveTransaction(ctx, generalActor(models.PermissionApproveDeposit), txn.ID, true)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("approval re-checks balance for withdrawals", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		planID := primitive.NewObjectID()
		txn := &models.Transaction{
			ID:     primitive.NewObjectID(),
			UserID: user.ID,
			PlanID: planID,
			Type:   models.TransactionTypeWithdraw,
			Amount: 2000,
			Status: models.TransactionStatusPending,
		}

		f.transactionRepo.On("GetByID", mock.Anything, txn.ID).Return(txn, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		// The balance shrank between placement and approval.
		f.transactionRepo.On("GetByUserAndPlan", mock.Anything, user.ID, planID).Return([]*models.Transaction{
			{PlanID: planID, Type: models.TransactionTypeDeposit, Amount: 1500, Status: models.TransactionStatusApproved},
		}, nil)

		_, err := f.service.ResolveTransaction(ctx, generalActor(models.PermissionApproveWithdrawal), txn.ID, true)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("second resolution is rejected", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		txn := &models.Transaction{
			ID:     primitive.NewObjectID(),
			UserID: user.ID,
			Type:   models.TransactionTypeDeposit,
			Amount: 2000,
			Status: models.TransactionStatusApproved,
		}

		f.transactionRepo.On("GetByID", mock.Anything, txn.ID).Return(txn, nil)

		_, err := f.service.ResolveTransaction(ctx, generalActor(models.PermissionApproveDeposit), txn.ID, false)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})

	t.Run("concurrent loser sees already resolved", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		actor := generalActor(models.PermissionApproveDeposit)
		txn := &models.Transaction{
			ID:     primitive.NewObjectID(),
			UserID: user.ID,
			PlanID: primitive.NewObjectID(),
			Type:   models.TransactionTypeDeposit,
			Amount: 2000,
			Status: models.TransactionStatusPending,
		}

		f.transactionRepo.On("GetByID", mock.Anything, txn.ID).Return(txn, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.transactionRepo.On("ResolveIfPending", mock.Anything, txn.ID, models.TransactionStatusApproved, actor.AdminID).
			Return(nil, interfaces.ErrNotFound)

		_, err := f.service.ResolveTransaction(ctx, actor, txn.ID, true)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})

	t.Run("successful approval notifies the user", func(t *testing.T) {
		f := newSavingsFixture(t)
		user := activeUser()
		actor := generalActor(models.PermissionApproveDeposit)
		txn := &models.Transaction{
			ID:     primitive.NewObjectID(),
			UserID: user.ID,
			PlanID: primitive.NewObjectID(),
			Type:   models.TransactionTypeDeposit,
			Amount: 2000,
			Status: models.TransactionStatusPending,
		}
		resolved := &models.Transaction{ID: txn.ID, UserID: user.ID, Type: txn.Type, Amount: txn.Amount, Status: models.TransactionStatusApproved}

		f.transactionRepo.On("GetByID", mock.Anything, txn.ID).Return(txn, nil)
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.transactionRepo.On("ResolveIfPending", mock.Anything, txn.ID, models.TransactionStatusApproved, actor.AdminID).Return(resolved, nil)
		f.notifications.On("NotifyTransactionResolved", mock.Anything, user, resolved).Return()

		got, err := f.service.ResolveTransaction(ctx, actor, txn.ID, true)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusApproved, got.Status)
		f.notifications.AssertExpectations(t)
	})
}

func TestGetUserSubscriptionsToleratesDeletedPlan(t *testing.T) {
	ctx := context.Background()
	f := newSavingsFixture(t)
	user := activeUser()
	planID := primitive.NewObjectID()
	subs := []*models.Subscription{
		{ID: primitive.NewObjectID(), UserID: user.ID, PlanID: planID, Status: models.SubscriptionStatusApproved},
	}

	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.subscriptionRepo.On("GetByUser", mock.Anything, user.ID).Return(subs, nil)
	f.planRepo.On("GetByID", mock.Anything, planID).Return(nil, interfaces.ErrNotFound)

	details, err := f.service.GetUserSubscriptions(ctx, generalActor(models.PermissionManageUsers), user.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Nil(t, details[0].Plan)
	assert.Equal(t, subs[0], details[0].Subscription)
}

func TestListTransactionsByStatusPermission(t *testing.T) {
	ctx := context.Background()
	f := newSavingsFixture(t)

	// Either approval permission opens the queue.
	f.transactionRepo.On("GetByStatus", mock.Anything, models.TransactionStatusPending, mock.Anything).
		Return([]*models.Transaction{}, int64(0), nil)

	_, _, err := f.service.ListTransactionsByStatus(ctx, generalActor(models.PermissionApproveWithdrawal), models.TransactionStatusPending, nil)
	assert.NoError(t, err)

	_, _, err = f.service.ListTransactionsByStatus(ctx, generalActor(models.PermissionPlaceDeposit), models.TransactionStatusPending, nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestPlanBalanceFold(t *testing.T) {
	planID := primitive.NewObjectID()
	other := primitive.NewObjectID()

	txns := []*models.Transaction{
		{PlanID: planID, Type: models.TransactionTypeDeposit, Amount: 10000, Status: models.TransactionStatusApproved},
		{PlanID: planID, Type: models.TransactionTypeWithdraw, Amount: 2500, Status: models.TransactionStatusApproved},
		{PlanID: planID, Type: models.TransactionTypeDeposit, Amount: 999, Status: models.TransactionStatusDeclined},
		{PlanID: planID, Type: models.TransactionTypeWithdraw, Amount: 999, Status: models.TransactionStatusPending},
		{PlanID: other, Type: models.TransactionTypeDeposit, Amount: 5000, Status: models.TransactionStatusApproved},
	}

	assert.Equal(t, 7500.0, models.PlanBalance(planID, txns))
}
