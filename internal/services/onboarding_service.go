package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coopsave/internal/models"
	"coopsave/internal/repositories/interfaces"
	"coopsave/internal/utils"
	"coopsave/pkg/authn"
	"coopsave/pkg/banking"
	"coopsave/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPhoneTaken        = errors.New("phone number already registered")
	ErrKYCNotApproved    = errors.New(utils.ErrKYCNotApproved)
	ErrNoAssignedAdmin   = errors.New(utils.ErrNoAssignedAdmin)
	ErrAlreadyActive     = errors.New("user already active")
	ErrAccountResolution = errors.New("bank account could not be resolved")
)

// OnboardingService owns the prospect to active-user pipeline: public
// registration, KYC review, conversion, admin assignment, and the
// activation and restriction flows.
//
// Activation is not atomic. It creates a sign-in credential at the
// identity provider, flips the user document, and notifies the user. A
// persisted stage marker brackets the sequence so the reconciliation
// sweep can finish an interrupted run.
type OnboardingService interface {
	RegisterProspect(ctx context.Context, request *RegisterProspectRequest) (*models.Prospect, error)
	ListProspects(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Prospect, int64, error)
	ReviewProspectKYC(ctx context.Context, actor *Actor, prospectID primitive.ObjectID, approve bool) (*models.Prospect, error)
	ConvertProspect(ctx context.Context, actor *Actor, prospectID primitive.ObjectID) (*models.User, error)

	CreateUser(ctx context.Context, actor *Actor, request *CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, actor *Actor, userID primitive.ObjectID) (*models.User, error)
	ListUsers(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.User, int64, error)
	ReviewUserKYC(ctx context.Context, actor *Actor, userID primitive.ObjectID, approve bool) (*models.User, error)
	SetBankAccount(ctx context.Context, actor *Actor, userID primitive.ObjectID, request *BankAccountRequest) (*models.User, error)
	AssignAdmin(ctx context.Context, actor *Actor, userID, adminID primitive.ObjectID) error
	UnassignAdmin(ctx context.Context, actor *Actor, userID, adminID primitive.ObjectID) error

	ActivateUser(ctx context.Context, actor *Actor, userID primitive.ObjectID) (*models.User, error)
	RestrictUser(ctx context.Context, actor *Actor, userID primitive.ObjectID) (*models.User, error)

	// ResumeActivation re-drives a stalled activation from its persisted
	// stage. The sweep is the only caller.
	ResumeActivation(ctx context.Context, user *models.User) error
}

type onboardingService struct {
	prospectRepo  interfaces.ProspectRepository
	userRepo      interfaces.UserRepository
	adminRepo     interfaces.AdminRepository
	auditLogRepo  interfaces.AuditLogRepository
	permissions   PermissionService
	authProvider  authn.AuthProvider
	bankVerifier  banking.BankVerifier
	notifications NotificationService
	logger        *logger.Logger
}

type RegisterProspectRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,phone"`
	State         string `json:"state" validate:"required"`
	LGA           string `json:"lga" validate:"required"`
	StreetAddress string `json:"street_address" validate:"required"`
	BranchID      string `json:"branch_id"`
}

type CreateUserRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,phone"`
	State         string `json:"state"`
	LGA           string `json:"lga"`
	StreetAddress string `json:"street_address"`
	BranchID      string `json:"branch_id"`
}

type BankAccountRequest struct {
	AccountNumber string `json:"account_number" validate:"required,account_number"`
	BankCode      string `json:"bank_code" validate:"required,bank_code"`
}

func NewOnboardingService(
	prospectRepo interfaces.ProspectRepository,
	userRepo interfaces.UserRepository,
	adminRepo interfaces.AdminRepository,
	auditLogRepo interfaces.AuditLogRepository,
	permissions PermissionService,
	authProvider authn.AuthProvider,
	bankVerifier banking.BankVerifier,
	notifications NotificationService,
	logger *logger.Logger,
) OnboardingService {
	return &onboardingService{
		prospectRepo:  prospectRepo,
		userRepo:      userRepo,
		adminRepo:     adminRepo,
		auditLogRepo:  auditLogRepo,
		permissions:   permissions,
		authProvider:  authProvider,
		bankVerifier:  bankVerifier,
		notifications: notifications,
		logger:        logger,
	}
}

// RegisterProspect is the one unauthenticated write in the system. The
// phone number is the dedupe key across both prospects and users.
func (s *onboardingService) RegisterProspect(ctx context.Context, request *RegisterProspectRequest) (*models.Prospect, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	phone := utils.NormalizePhone(request.Phone)

	if _, err := s.prospectRepo.GetByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	prospect := &models.Prospect{
		Name:          request.Name,
		Email:         request.Email,
		Phone:         phone,
		State:         request.State,
		LGA:           request.LGA,
		StreetAddress: request.StreetAddress,
	}
	if request.BranchID != "" {
		branchID, err := primitive.ObjectIDFromHex(request.BranchID)
		if err != nil {
			return nil, fmt.Errorf("invalid branch id: %w", err)
		}
		prospect.BranchID = &branchID
	}

	if err := s.prospectRepo.Create(ctx, prospect); err != nil {
		return nil, err
	}

	s.logger.WithField("prospect_id", prospect.ID.Hex()).Info(utils.EventProspectCreated)

	return prospect, nil
}

func (s *onboardingService) ListProspects(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.Prospect, int64, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, nil) {
		return nil, 0, ErrPermissionDenied
	}

	// Branch roles only see their own branch's registrants.
	if actor.RoleType == models.RoleTypeBranch && actor.BranchID != nil {
		return s.prospectRepo.GetByBranch(ctx, *actor.BranchID, params)
	}

	return s.prospectRepo.List(ctx, params)
}

func (s *onboardingService) ReviewProspectKYC(ctx context.Context, actor *Actor, prospectID primitive.ObjectID, approve bool) (*models.Prospect, error) {
	prospect, err := s.prospectRepo.GetByID(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageKYC, &Target{BranchID: prospect.BranchID}) {
		return nil, ErrPermissionDenied
	}

	status := models.KYCStatusRejected
	if approve {
		status = models.KYCStatusApproved
	}

	if err := s.prospectRepo.Update(ctx, prospectID, map[string]interface{}{"kyc": status}); err != nil {
		return nil, err
	}
	prospect.KYC = status

	s.audit(ctx, actor, models.AuditActionUpdate, "prospect", prospectID.Hex(), nil, map[string]interface{}{
		"kyc": string(status),
	})

	return prospect, nil
}

// ConvertProspect creates the user first, marked with the prospect id,
// then deletes the prospect. If the delete is lost the marker lets the
// sweep finish the job instead of minting a duplicate user.
func (s *onboardingService) ConvertProspect(ctx context.Context, actor *Actor, prospectID primitive.ObjectID) (*models.User, error) {
	prospect, err := s.prospectRepo.GetByID(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, &Target{BranchID: prospect.BranchID}) {
		return nil, ErrPermissionDenied
	}

	// Re-converting a half-finished prospect reuses the existing user.
	existing, err := s.userRepo.GetByConvertedFrom(ctx, prospectID)
	if err == nil {
		if deleteErr := s.prospectRepo.Delete(ctx, prospectID); deleteErr != nil && !errors.Is(deleteErr, interfaces.ErrNotFound) {
			return nil, deleteErr
		}
		return existing, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Name:          prospect.Name,
		Email:         prospect.Email,
		Phone:         prospect.Phone,
		State:         prospect.State,
		LGA:           prospect.LGA,
		StreetAddress: prospect.StreetAddress,
		BranchID:      prospect.BranchID,
		Status:        models.UserStatusPending,
		KYC:           prospect.KYC,
		ConvertedFrom: &prospectID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.prospectRepo.Delete(ctx, prospectID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		// The user exists and carries the conversion marker; the sweep
		// retries the delete.
		s.logger.WithUserID(user.ID).WithError(err).Warn("prospect delete failed after conversion")
	}

	s.audit(ctx, actor, models.AuditActionConvert, "prospect", prospectID.Hex(), nil, map[string]interface{}{
		"user_id": user.ID.Hex(),
	})
	s.logger.LogWorkflowEvent(user.ID, utils.EventProspectConverted, map[string]interface{}{
		"prospect_id": prospectID.Hex(),
	})

	return user, nil
}

func (s *onboardingService) CreateUser(ctx context.Context, actor *Actor, request *CreateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var branchID *primitive.ObjectID
	if request.BranchID != "" {
		id, err := primitive.ObjectIDFromHex(request.BranchID)
		if err != nil {
			return nil, fmt.Errorf("invalid branch id: %w", err)
		}
		branchID = &id
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, &Target{BranchID: branchID}) {
		return nil, ErrPermissionDenied
	}

	phone := utils.NormalizePhone(request.Phone)
	if _, err := s.userRepo.GetByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Name:          request.Name,
		Email:         request.Email,
		Phone:         phone,
		State:         request.State,
		LGA:           request.LGA,
		StreetAddress: request.StreetAddress,
		BranchID:      branchID,
		Status:        models.UserStatusPending,
		KYC:           models.KYCStatusPending,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionCreate, "user", user.ID.Hex(), nil, map[string]interface{}{
		"phone": user.Phone,
	})

	return user, nil
}

func (s *onboardingService) GetUser(ctx context.Context, actor *Actor, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}) {
		return nil, ErrPermissionDenied
	}

	return user, nil
}

// ListUsers narrows to the actor's scope: branch roles see their branch,
// assigned roles see only users they manage.
func (s *onboardingService) ListUsers(ctx context.Context, actor *Actor, params *utils.PaginationParams) ([]*models.User, int64, error) {
	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, nil) {
		return nil, 0, ErrPermissionDenied
	}

	if !actor.SuperAdmin {
		switch actor.RoleType {
		case models.RoleTypeBranch:
			if actor.BranchID != nil {
				return s.userRepo.GetByBranch(ctx, *actor.BranchID, params)
			}
		case models.RoleTypeAssigned:
			return s.userRepo.GetByAssignedAdmin(ctx, actor.AdminID, params)
		}
	}

	return s.userRepo.List(ctx, params)
}

func (s *onboardingService) ReviewUserKYC(ctx context.Context, actor *Actor, userID primitive.ObjectID, approve bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageKYC, &Target{User: user}) {
		return nil, ErrPermissionDenied
	}

	status := models.KYCStatusRejected
	if approve {
		status = models.KYCStatusApproved
	}

	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"kyc": status}); err != nil {
		return nil, err
	}
	user.KYC = status

	s.audit(ctx, actor, models.AuditActionUpdate, "user", userID.Hex(), nil, map[string]interface{}{
		"kyc": string(status),
	})
	s.logger.LogWorkflowEvent(userID, utils.EventKYCReviewed, map[string]interface{}{
		"kyc": string(status),
	})
	s.notifications.NotifyKYCReviewed(ctx, user, status)

	return user, nil
}

// SetBankAccount resolves the account against the interbank directory
// before storing it. An unresolvable account is rejected outright.
func (s *onboardingService) SetBankAccount(ctx context.Context, actor *Actor, userID primitive.ObjectID, request *BankAccountRequest) (*models.User, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}) {
		return nil, ErrPermissionDenied
	}

	detail, err := s.bankVerifier.ResolveAccount(ctx, request.AccountNumber, request.BankCode)
	if err != nil {
		s.logger.WithUserID(userID).WithError(err).Warn("bank account resolution failed")
		return nil, ErrAccountResolution
	}

	account := &models.BankAccount{
		AccountName:   detail.AccountName,
		AccountNumber: detail.AccountNumber,
		BankCode:      detail.BankCode,
		BankName:      detail.BankName,
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"bank_account": account}); err != nil {
		return nil, err
	}
	user.BankAccount = account

	s.audit(ctx, actor, models.AuditActionUpdate, "user", userID.Hex(), nil, map[string]interface{}{
		"bank_account": detail.AccountNumber,
	})

	return user, nil
}

func (s *onboardingService) AssignAdmin(ctx context.Context, actor *Actor, userID, adminID primitive.ObjectID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}) {
		return ErrPermissionDenied
	}

	if _, err := s.adminRepo.GetByID(ctx, adminID); err != nil {
		return err
	}

	if err := s.userRepo.AddAdmin(ctx, userID, adminID); err != nil {
		return err
	}

	s.audit(ctx, actor, models.AuditActionUpdate, "user", userID.Hex(), nil, map[string]interface{}{
		"assigned_admin": adminID.Hex(),
	})

	return nil
}

func (s *onboardingService) UnassignAdmin(ctx context.Context, actor *Actor, userID, adminID primitive.ObjectID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.permissions.CanPerform(actor, models.PermissionManageUsers, &Target{User: user}) {
		return ErrPermissionDenied
	}

	if err := s.userRepo.RemoveAdmin(ctx, userID, adminID); err != nil {
		return err
	}

	s.audit(ctx, actor, models.AuditActionUpdate, "user", userID.Hex(), nil, map[string]interface{}{
		"unassigned_admin": adminID.Hex(),
	})

	return nil
}

// ActivateUser runs the activation sequence. KYC approval and at least one
// assigned admin are hard preconditions.
func (s *onboardingService) ActivateUser(ctx context.Context, actor *Actor, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionActivateUser, &Target{User: user}) {
		return nil, ErrPermissionDenied
	}
	if user.Status == models.UserStatusActive {
		return nil, ErrAlreadyActive
	}
	if user.KYC != models.KYCStatusApproved {
		return nil, ErrKYCNotApproved
	}
	if len(user.Admins) == 0 {
		return nil, ErrNoAssignedAdmin
	}

	if err := s.runActivation(ctx, user); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, models.AuditActionActivate, "user", userID.Hex(),
		map[string]interface{}{"status": string(models.UserStatusPending)},
		map[string]interface{}{"status": string(models.UserStatusActive)},
	)

	return user, nil
}

func (s *onboardingService) RestrictUser(ctx context.Context, actor *Actor, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanPerform(actor, models.PermissionActivateUser, &Target{User: user}) {
		return nil, ErrPermissionDenied
	}

	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"status": models.UserStatusRestricted}); err != nil {
		return nil, err
	}
	user.Status = models.UserStatusRestricted

	// The credential stays but sign-in is refused at the provider.
	if user.UID != "" {
		if err := s.authProvider.DisableCredential(ctx, user.UID); err != nil {
			s.logger.WithUserID(userID).WithError(err).Warn("failed to disable credential")
		}
	}

	s.audit(ctx, actor, models.AuditActionRestrict, "user", userID.Hex(), nil, map[string]interface{}{
		"status": string(models.UserStatusRestricted),
	})
	s.logger.LogWorkflowEvent(userID, utils.EventUserRestricted, nil)
	s.notifications.NotifyUserRestricted(ctx, user)

	return user, nil
}

func (s *onboardingService) ResumeActivation(ctx context.Context, user *models.User) error {
	if user.Activation == nil {
		return nil
	}
	if !user.CanActivate() {
		// Preconditions regressed since the run started; drop the marker
		// and let an admin re-trigger.
		return s.userRepo.Update(ctx, user.ID, map[string]interface{}{"activation": nil})
	}
	return s.runActivation(ctx, user)
}

// runActivation executes the staged sequence. Each stage is persisted
// before its side effect so an interrupted run resumes exactly where it
// stopped. Credential creation tolerates an existing credential, which is
// what a replayed stage looks like.
func (s *onboardingService) runActivation(ctx context.Context, user *models.User) error {
	stage := models.ActivationStageCredential
	if user.Activation != nil {
		stage = user.Activation.Stage
	}

	// The temporary password only exists when this run creates the
	// credential. A resume that skips that stage sends a notification
	// without one; the user falls back to the password reset flow.
	tempPassword := ""

	if stage == models.ActivationStageCredential {
		tempPassword = utils.GenerateRandomPassword(utils.GeneratedPasswordLength)
		if err := s.markStage(ctx, user, models.ActivationStageCredential); err != nil {
			return err
		}

		identity, err := s.authProvider.CreateCredential(ctx, &authn.CreateCredentialRequest{
			Phone:       user.Phone,
			Email:       user.Email,
			DisplayName: user.Name,
			Password:    tempPassword,
		})
		if err != nil {
			if !errors.Is(err, authn.ErrAlreadyExists) {
				return fmt.Errorf("failed to create credential: %w", err)
			}
			identity, err = s.authProvider.LookupByPhone(ctx, user.Phone)
			if err != nil {
				return fmt.Errorf("failed to look up existing credential: %w", err)
			}
			// An existing credential may have been disabled by an earlier
			// restriction; activation must hand back a usable sign-in.
			if err := s.authProvider.EnableCredential(ctx, identity.UID); err != nil {
				return fmt.Errorf("failed to re-enable credential: %w", err)
			}
		}
		user.UID = identity.UID

		stage = models.ActivationStageStatus
	}

	if stage == models.ActivationStageStatus {
		if err := s.markStage(ctx, user, models.ActivationStageStatus); err != nil {
			return err
		}

		if user.UID == "" {
			identity, err := s.authProvider.LookupByPhone(ctx, user.Phone)
			if err != nil {
				return fmt.Errorf("failed to recover credential uid: %w", err)
			}
			if err := s.authProvider.EnableCredential(ctx, identity.UID); err != nil {
				return fmt.Errorf("failed to re-enable credential: %w", err)
			}
			user.UID = identity.UID
		}

		updates := map[string]interface{}{
			"status": models.UserStatusActive,
			"uid":    user.UID,
			"activation": &models.ActivationMarker{
				Stage:     models.ActivationStageNotify,
				StartedAt: time.Now(),
			},
		}
		if err := s.userRepo.Update(ctx, user.ID, updates); err != nil {
			return err
		}
		user.Status = models.UserStatusActive

		stage = models.ActivationStageNotify
	}

	if stage == models.ActivationStageNotify {
		s.notifications.NotifyUserActivated(ctx, user, tempPassword)

		if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"activation": nil}); err != nil {
			return err
		}
		user.Activation = nil
	}

	s.logger.LogWorkflowEvent(user.ID, utils.EventUserActivated, map[string]interface{}{
		"uid": user.UID,
	})

	return nil
}

func (s *onboardingService) markStage(ctx context.Context, user *models.User, stage models.ActivationStage) error {
	marker := &models.ActivationMarker{
		Stage:     stage,
		StartedAt: time.Now(),
	}
	if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"activation": marker}); err != nil {
		return fmt.Errorf("failed to persist activation stage: %w", err)
	}
	user.Activation = marker
	return nil
}

func (s *onboardingService) audit(ctx context.Context, actor *Actor, action models.AuditAction, resource, resourceID string, oldValues, newValues map[string]interface{}) {
	entry := &models.AuditLog{
		AdminID:    &actor.AdminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}
	if err := s.auditLogRepo.Create(ctx, entry); err != nil {
		s.logger.WithAdminID(actor.AdminID).WithError(err).Warn("failed to write audit entry")
	}
}
