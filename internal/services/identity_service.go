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
	"coopsave/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidCredential = errors.New(utils.ErrInvalidCredentials)
	ErrAccessRevoked     = errors.New(utils.ErrAccountRestricted)
)

// IdentityService turns a provider credential into a session token and
// resolves the acting admin on every request. Role permissions are re-read
// per request so edits and revocations apply to the holder's next action.
type IdentityService interface {
	Login(ctx context.Context, request *LoginRequest) (*LoginResponse, error)
	ResolveActor(ctx context.Context, adminID primitive.ObjectID) (*Actor, error)
	GetProfile(ctx context.Context, adminID primitive.ObjectID) (*AdminProfile, error)
}

type identityService struct {
	adminRepo    interfaces.AdminRepository
	roleRepo     interfaces.RoleRepository
	auditLogRepo interfaces.AuditLogRepository
	permissions  PermissionService
	authProvider authn.AuthProvider
	jwtSecret    string
	tokenTTL     time.Duration
	logger       *logger.Logger
}

type LoginRequest struct {
	IDToken   string `json:"id_token" validate:"required"`
	IPAddress string `json:"ip_address"`
}

type LoginResponse struct {
	Token       *utils.AccessToken   `json:"token"`
	Admin       *models.Admin        `json:"admin"`
	Role        *models.Role         `json:"role"`
	Permissions models.PermissionSet `json:"permissions"`
}

type AdminProfile struct {
	Admin       *models.Admin        `json:"admin"`
	Role        *models.Role         `json:"role"`
	Branch      *models.Branch       `json:"branch,omitempty"`
	Permissions models.PermissionSet `json:"permissions"`
}

func NewIdentityService(
	adminRepo interfaces.AdminRepository,
	roleRepo interfaces.RoleRepository,
	auditLogRepo interfaces.AuditLogRepository,
	permissions PermissionService,
	authProvider authn.AuthProvider,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *logger.Logger,
) IdentityService {
	return &identityService{
		adminRepo:    adminRepo,
		roleRepo:     roleRepo,
		auditLogRepo: auditLogRepo,
		permissions:  permissions,
		authProvider: authProvider,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

func (s *identityService) Login(ctx context.Context, request *LoginRequest) (*LoginResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	identity, err := s.authProvider.VerifyCredential(ctx, request.IDToken)
	if err != nil {
		if errors.Is(err, authn.ErrUnauthorized) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to verify credential: %w", err)
	}

	admin, err := s.lookupAdmin(ctx, identity)
	if err != nil {
		return nil, err
	}

	if !admin.CanSignIn() {
		return nil, ErrAccessRevoked
	}

	role, err := s.roleForAdmin(ctx, admin)
	if err != nil {
		return nil, err
	}
	if role == nil {
		// An admin without a role can hold a session but every permission
		// check denies.
		s.logger.WithAdminID(admin.ID).Warn("admin signed in without a role")
	}

	branchHex := ""
	if admin.BranchID != nil {
		branchHex = admin.BranchID.Hex()
	}
	roleID := primitive.NilObjectID
	if admin.RoleID != nil {
		roleID = *admin.RoleID
	}

	token, err := utils.GenerateAccessToken(admin.ID, roleID, branchHex, admin.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	// Placeholders have no stored record to audit against.
	if !admin.ID.IsZero() {
		s.recordLogin(ctx, admin, request.IPAddress)
		s.logger.LogAdminAction(admin.ID, utils.EventAdminLogin, map[string]interface{}{
			"email": admin.Email,
		})
	}

	actor := s.permissions.ActorFromAdmin(admin, role)

	return &LoginResponse{
		Token:       token,
		Admin:       admin,
		Role:        role,
		Permissions: actor.Permissions,
	}, nil
}

// ResolveActor fetches the admin and role fresh. Middleware calls this once
// per authenticated request.
func (s *identityService) ResolveActor(ctx context.Context, adminID primitive.ObjectID) (*Actor, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to resolve admin: %w", err)
	}

	if !admin.CanSignIn() {
		return nil, ErrAccessRevoked
	}

	role, err := s.roleForAdmin(ctx, admin)
	if err != nil {
		return nil, err
	}

	return s.permissions.ActorFromAdmin(admin, role), nil
}

func (s *identityService) GetProfile(ctx context.Context, adminID primitive.ObjectID) (*AdminProfile, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	role, err := s.roleForAdmin(ctx, admin)
	if err != nil {
		return nil, err
	}

	actor := s.permissions.ActorFromAdmin(admin, role)

	return &AdminProfile{
		Admin:       admin,
		Role:        role,
		Permissions: actor.Permissions,
	}, nil
}

// lookupAdmin matches by provider uid first. A first sign-in after an
// out-of-band credential import matches by email and backfills the uid. A
// valid credential with no admin record at all yields a placeholder rather
// than an error: the holder gets a session that can do nothing until an
// admin record is provisioned for them.
func (s *identityService) lookupAdmin(ctx context.Context, identity *authn.Identity) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByUID(ctx, identity.UID)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if identity.Email == "" {
		return placeholderAdmin(identity), nil
	}

	admin, err = s.adminRepo.GetByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return placeholderAdmin(identity), nil
		}
		return nil, fmt.Errorf("failed to look up admin by email: %w", err)
	}

	if updateErr := s.adminRepo.Update(ctx, admin.ID, map[string]interface{}{"uid": identity.UID}); updateErr != nil {
		s.logger.WithAdminID(admin.ID).WithError(updateErr).Warn("failed to backfill admin uid")
	} else {
		admin.UID = identity.UID
	}

	return admin, nil
}

// placeholderAdmin is the unprovisioned stand-in for a credential that has
// no admin record. It carries no role, so every permission check denies.
func placeholderAdmin(identity *authn.Identity) *models.Admin {
	return &models.Admin{
		Email:  identity.Email,
		Phone:  identity.Phone,
		UID:    identity.UID,
		Status: models.AdminStatusPending,
	}
}

func (s *identityService) roleForAdmin(ctx context.Context, admin *models.Admin) (*models.Role, error) {
	if admin.RoleID == nil {
		return nil, nil
	}

	role, err := s.roleRepo.GetByID(ctx, *admin.RoleID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			// A deleted role leaves the admin with no permissions rather
			// than an error on every request.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load role: %w", err)
	}

	return role, nil
}

func (s *identityService) recordLogin(ctx context.Context, admin *models.Admin, ipAddress string) {
	entry := &models.AuditLog{
		AdminID:    &admin.ID,
		Action:     models.AuditActionLogin,
		Resource:   "admin",
		ResourceID: admin.ID.Hex(),
		IPAddress:  ipAddress,
	}
	if err := s.auditLogRepo.Create(ctx, entry); err != nil {
		s.logger.WithAdminID(admin.ID).WithError(err).Warn("failed to write login audit entry")
	}
}
