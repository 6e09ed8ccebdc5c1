package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coopsave/internal/models"
	"coopsave/internal/utils"
	"coopsave/pkg/authn"
	"coopsave/pkg/banking"
	"coopsave/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.LogLevel("error"), Format: "text", Output: "stdout"})
	require.NoError(t, err)
	return log
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) GetByStatus(ctx context.Context, status models.UserStatus, params *utils.PaginationParams) ([]*models.User, int64, error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) GetByBranch(ctx context.Context, branchID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error) {
	args := m.Called(ctx, branchID, params)
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) GetByAssignedAdmin(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error) {
	args := m.Called(ctx, adminID, params)
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) GetByBroadcastTarget(ctx context.Context, broadcast *models.Broadcast) ([]*models.User, error) {
	args := m.Called(ctx, broadcast)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByConvertedFrom(ctx context.Context, prospectID primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, prospectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddAdmin(ctx context.Context, userID, adminID primitive.ObjectID) error {
	return m.Called(ctx, userID, adminID).Error(0)
}

func (m *MockUserRepository) RemoveAdmin(ctx context.Context, userID, adminID primitive.ObjectID) error {
	return m.Called(ctx, userID, adminID).Error(0)
}

func (m *MockUserRepository) GetStaleActivations(ctx context.Context, cutoff time.Time) ([]*models.User, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) CountByBranch(ctx context.Context, branchID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetCountByStatus(ctx context.Context, status models.UserStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockProspectRepository struct{ mock.Mock }

func (m *MockProspectRepository) Create(ctx context.Context, prospect *models.Prospect) error {
	return m.Called(ctx, prospect).Error(0)
}

func (m *MockProspectRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Prospect, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prospect), args.Error(1)
}

func (m *MockProspectRepository) GetByPhone(ctx context.Context, phone string) (*models.Prospect, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prospect), args.Error(1)
}

func (m *MockProspectRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockProspectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProspectRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Prospect, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*models.Prospect), args.Get(1).(int64), args.Error(2)
}

func (m *MockProspectRepository) GetByBranch(ctx context.Context, branchID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Prospect, int64, error) {
	args := m.Called(ctx, branchID, params)
	return args.Get(0).([]*models.Prospect), args.Get(1).(int64), args.Error(2)
}

func (m *MockProspectRepository) GetAll(ctx context.Context) ([]*models.Prospect, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Prospect), args.Error(1)
}

type MockAdminRepository struct{ mock.Mock }

func (m *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return m.Called(ctx, admin).Error(0)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByUID(ctx context.Context, uid string) (*models.Admin, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockAdminRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Admin, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*models.Admin), args.Get(1).(int64), args.Error(2)
}

func (m *MockAdminRepository) GetByBranch(ctx context.Context, branchID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Admin, int64, error) {
	args := m.Called(ctx, branchID, params)
	return args.Get(0).([]*models.Admin), args.Get(1).(int64), args.Error(2)
}

func (m *MockAdminRepository) CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminRepository) CountByBranch(ctx context.Context, branchID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).(int64), args.Error(1)
}

type MockRoleRepository struct{ mock.Mock }

func (m *MockRoleRepository) Create(ctx context.Context, role *models.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoleRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Role, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*models.Role), args.Get(1).(int64), args.Error(2)
}

func (m *MockRoleRepository) GetByBranch(ctx context.Context, branchID primitive.ObjectID) ([]*models.Role, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).([]*models.Role), args.Error(1)
}

type MockPlanRepository struct{ mock.Mock }

func (m *MockPlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPlanRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Plan, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*models.Plan), args.Get(1).(int64), args.Error(2)
}

func (m *MockPlanRepository) GetActive(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Plan), args.Error(1)
}

type MockSubscriptionRepository struct{ mock.Mock }

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubscriptionRepository) ResolveIfPending(ctx context.Context, id primitive.ObjectID, status models.SubscriptionStatus, updates map[string]interface{}) (*models.Subscription, error) {
	args := m.Called(ctx, id, status, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Subscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetBlocking(ctx context.Context, userID, planID primitive.ObjectID) (*models.Subscription, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Subscription, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*models.Subscription), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubscriptionRepository) GetByStatus(ctx context.Context, status models.SubscriptionStatus, params *utils.PaginationParams) ([]*models.Subscription, int64, error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).([]*models.Subscription), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubscriptionRepository) CountByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactionRepository struct{ mock.Mock }

func (m *MockTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ResolveIfPending(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus, resolvedBy primitive.ObjectID) (*models.Transaction, error) {
	args := m.Called(ctx, id, status, resolvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).([]*models.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) GetByUserAndPlan(ctx context.Context, userID, planID primitive.ObjectID) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, planID)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).([]*models.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*models.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) GetPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

type MockAuditLogRepository struct{ mock.Mock }

func (m *MockAuditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockAuditLogRepository) GetByResource(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, resource, resourceID, params)
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockAuditLogRepository) GetByAdmin(ctx context.Context, adminID primitive.ObjectID, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, adminID, params)
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

type MockAuthProvider struct{ mock.Mock }

func (m *MockAuthProvider) VerifyCredential(ctx context.Context, idToken string) (*authn.Identity, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authn.Identity), args.Error(1)
}

func (m *MockAuthProvider) CreateCredential(ctx context.Context, request *authn.CreateCredentialRequest) (*authn.Identity, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authn.Identity), args.Error(1)
}

func (m *MockAuthProvider) LookupByPhone(ctx context.Context, phone string) (*authn.Identity, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authn.Identity), args.Error(1)
}

func (m *MockAuthProvider) DisableCredential(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *MockAuthProvider) EnableCredential(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

type MockBankVerifier struct{ mock.Mock }

func (m *MockBankVerifier) ListBanks(ctx context.Context) ([]*banking.Bank, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*banking.Bank), args.Error(1)
}

func (m *MockBankVerifier) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*banking.AccountDetail, error) {
	args := m.Called(ctx, accountNumber, bankCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.AccountDetail), args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) NotifyUserActivated(ctx context.Context, user *models.User, tempPassword string) {
	m.Called(ctx, user, tempPassword)
}

func (m *MockNotificationService) NotifyUserRestricted(ctx context.Context, user *models.User) {
	m.Called(ctx, user)
}

func (m *MockNotificationService) NotifyKYCReviewed(ctx context.Context, user *models.User, status models.KYCStatus) {
	m.Called(ctx, user, status)
}

func (m *MockNotificationService) NotifySubscriptionResolved(ctx context.Context, user *models.User, sub *models.Subscription) {
	m.Called(ctx, user, sub)
}

func (m *MockNotificationService) NotifyTransactionResolved(ctx context.Context, user *models.User, txn *models.Transaction) {
	m.Called(ctx, user, txn)
}

func (m *MockNotificationService) SendBroadcast(ctx context.Context, broadcast *models.Broadcast, recipients []*models.User) {
	m.Called(ctx, broadcast, recipients)
}
