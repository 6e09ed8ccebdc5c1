package authn

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type FirebaseProvider struct {
	client *auth.Client
}

func NewFirebaseProvider(credentialsFile string) (*FirebaseProvider, error) {
	ctx := context.Background()

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}

	return &FirebaseProvider{
		client: client,
	}, nil
}

func (f *FirebaseProvider) VerifyCredential(ctx context.Context, idToken string) (*Identity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	identity := &Identity{UID: token.UID}

	if phone, ok := token.Claims["phone_number"].(string); ok {
		identity.Phone = phone
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = name
	}

	return identity, nil
}

func (f *FirebaseProvider) CreateCredential(ctx context.Context, request *CreateCredentialRequest) (*Identity, error) {
	params := (&auth.UserToCreate{}).
		PhoneNumber(request.Phone).
		DisplayName(request.DisplayName).
		Disabled(request.Disabled)

	if request.UID != "" {
		params = params.UID(request.UID)
	}
	if request.Email != "" {
		params = params.Email(request.Email)
	}
	if request.Password != "" {
		params = params.Password(request.Password)
	}

	record, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsPhoneNumberAlreadyExists(err) || auth.IsEmailAlreadyExists(err) || auth.IsUIDAlreadyExists(err) {
			return nil, fmt.Errorf("%w: %v", ErrAlreadyExists, err)
		}
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return identityFromRecord(record), nil
}

func (f *FirebaseProvider) LookupByPhone(ctx context.Context, phone string) (*Identity, error) {
	record, err := f.client.GetUserByPhoneNumber(ctx, phone)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to look up credential by phone: %w", err)
	}

	return identityFromRecord(record), nil
}

func (f *FirebaseProvider) DisableCredential(ctx context.Context, uid string) error {
	params := (&auth.UserToUpdate{}).Disabled(true)

	_, err := f.client.UpdateUser(ctx, uid, params)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return fmt.Errorf("failed to disable credential: %w", err)
	}

	return nil
}

func (f *FirebaseProvider) EnableCredential(ctx context.Context, uid string) error {
	params := (&auth.UserToUpdate{}).Disabled(false)

	_, err := f.client.UpdateUser(ctx, uid, params)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return fmt.Errorf("failed to enable credential: %w", err)
	}

	return nil
}

func identityFromRecord(record *auth.UserRecord) *Identity {
	return &Identity{
		UID:         record.UID,
		Phone:       record.PhoneNumber,
		Email:       record.Email,
		DisplayName: record.DisplayName,
	}
}
