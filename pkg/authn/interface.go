package authn

import (
	"context"
	"errors"
)

// Provider errors. Callers branch on these; the underlying SDK error is
// wrapped so the original cause stays visible in logs.
var (
	ErrUnauthorized  = errors.New("credential invalid or expired")
	ErrAlreadyExists = errors.New("credential already exists")
	ErrNotFound      = errors.New("credential not found")
)

type Identity struct {
	UID         string `json:"uid"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type CreateCredentialRequest struct {
	UID         string `json:"uid"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"-"`
	Disabled    bool   `json:"disabled"`
}

type AuthProvider interface {
	VerifyCredential(ctx context.Context, idToken string) (*Identity, error)
	CreateCredential(ctx context.Context, request *CreateCredentialRequest) (*Identity, error)
	LookupByPhone(ctx context.Context, phone string) (*Identity, error)
	DisableCredential(ctx context.Context, uid string) error
	EnableCredential(ctx context.Context, uid string) error
}
