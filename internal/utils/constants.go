package utils

import "time"

// Application Constants
const (
	AppName    = "CoopSave"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency    = "NGN"
	DefaultCountryCode = "+234"
	DefaultTimeZone    = "Africa/Lagos"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL = 24 * time.Hour
	PasswordMinLength = 8
	PasswordMaxLength = 128

	// Savings
	MinTransactionAmount = 1.0
	MinPlanTenureMonths  = 1
	MaxPlanTenureMonths  = 60

	// Onboarding
	GeneratedPasswordLength = 12
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials   = "invalid credentials"
	ErrAdminNotFound        = "admin not found"
	ErrUserNotFound         = "user not found"
	ErrInvalidToken         = "invalid token"
	ErrTokenExpired         = "token expired"
	ErrInvalidInput         = "invalid input"
	ErrInternalServer       = "internal server error"
	ErrUnauthorized         = "unauthorized"
	ErrForbidden            = "forbidden"
	ErrNotFound             = "not found"
	ErrConflict             = "conflict"
	ErrValidationFailed     = "validation failed"
	ErrTransactionResolved  = "transaction already resolved"
	ErrSubscriptionExists   = "active subscription for plan already exists"
	ErrKYCNotApproved       = "kyc not approved"
	ErrNoAssignedAdmin      = "no admin assigned"
	ErrAccountRestricted    = "account restricted"
	ErrProspectConverted    = "prospect already converted"
	ErrInsufficientBalance  = "insufficient plan balance"
)

// Cache Keys
const (
	CacheAdminPrefix        = "admin:"
	CacheUserPrefix         = "user:"
	CacheRolePrefix         = "role:"
	CacheBranchPrefix       = "branch:"
	CachePlanPrefix         = "plan:"
	CacheProductPrefix      = "product:"
	CacheBankDirectoryKey   = "banks:directory"
	CacheStateDirectoryKey  = "states:directory"
	CacheRateLimitPrefix    = "rate_limit:"
)

// Event Types
const (
	EventAdminLogin            = "admin_login"
	EventProspectCreated       = "prospect_created"
	EventProspectConverted     = "prospect_converted"
	EventUserActivated         = "user_activated"
	EventUserRestricted        = "user_restricted"
	EventKYCReviewed           = "kyc_reviewed"
	EventSubscriptionRequested = "subscription_requested"
	EventSubscriptionResolved  = "subscription_resolved"
	EventTransactionPlaced     = "transaction_placed"
	EventTransactionResolved   = "transaction_resolved"
	EventBroadcastSent         = "broadcast_sent"
)
