package services

import (
	"context"
	"fmt"

	"coopsave/internal/models"
	"coopsave/pkg/email"
	"coopsave/pkg/logger"
	"coopsave/pkg/push"
	"coopsave/pkg/sms"
)

// NotificationService fans workflow events out to SMS, email and push.
// Delivery is best effort; failures are logged and never fail the workflow
// that triggered them.
type NotificationService interface {
	NotifyUserActivated(ctx context.Context, user *models.User, tempPassword string)
	NotifyUserRestricted(ctx context.Context, user *models.User)
	NotifyKYCReviewed(ctx context.Context, user *models.User, status models.KYCStatus)
	NotifySubscriptionResolved(ctx context.Context, user *models.User, sub *models.Subscription)
	NotifyTransactionResolved(ctx context.Context, user *models.User, txn *models.Transaction)
	SendBroadcast(ctx context.Context, broadcast *models.Broadcast, recipients []*models.User)
}

type notificationService struct {
	smsProvider  sms.SMSProvider
	emailSender  email.Sender
	pushProvider push.PushProvider
	pushTopic    string
	logger       *logger.Logger
}

func NewNotificationService(
	smsProvider sms.SMSProvider,
	emailSender email.Sender,
	pushProvider push.PushProvider,
	pushTopic string,
	logger *logger.Logger,
) NotificationService {
	return &notificationService{
		smsProvider:  smsProvider,
		emailSender:  emailSender,
		pushProvider: pushProvider,
		pushTopic:    pushTopic,
		logger:       logger,
	}
}

func (s *notificationService) NotifyUserActivated(ctx context.Context, user *models.User, tempPassword string) {
	message := fmt.Sprintf("Welcome to CoopSave, %s. Your account is now active.", user.Name)
	if tempPassword != "" {
		message += " Sign in with your phone number and temporary password: " + tempPassword
	} else {
		message += " Use the password reset option on the sign-in screen to set your password."
	}
	s.sendSMS(ctx, user, message)
	s.sendEmail(ctx, user, "Your CoopSave account is active", message)
}

func (s *notificationService) NotifyUserRestricted(ctx context.Context, user *models.User) {
	message := fmt.Sprintf("Hello %s, your CoopSave account has been restricted. Contact your branch for assistance.", user.Name)
	s.sendSMS(ctx, user, message)
	s.sendEmail(ctx, user, "Your CoopSave account has been restricted", message)
}

func (s *notificationService) NotifyKYCReviewed(ctx context.Context, user *models.User, status models.KYCStatus) {
	var message string
	switch status {
	case models.KYCStatusApproved:
		message = fmt.Sprintf("Hello %s, your identity documents have been approved.", user.Name)
	case models.KYCStatusRejected:
		message = fmt.Sprintf("Hello %s, your identity documents were rejected. Please resubmit.", user.Name)
	default:
		return
	}
	s.sendSMS(ctx, user, message)
}

func (s *notificationService) NotifySubscriptionResolved(ctx context.Context, user *models.User, sub *models.Subscription) {
	var message string
	if sub.Status == models.SubscriptionStatusApproved {
		message = fmt.Sprintf("Hello %s, your savings plan subscription has been approved.", user.Name)
	} else {
		message = fmt.Sprintf("Hello %s, your savings plan subscription was declined.", user.Name)
	}
	s.sendSMS(ctx, user, message)
}

func (s *notificationService) NotifyTransactionResolved(ctx context.Context, user *models.User, txn *models.Transaction) {
	verb := "withdrawal"
	if txn.Type == models.TransactionTypeDeposit {
		verb = "deposit"
	}

	var message string
	if txn.Status == models.TransactionStatusApproved {
		message = fmt.Sprintf("Hello %s, your %s of %.2f has been approved.", user.Name, verb, txn.Amount)
	} else {
		message = fmt.Sprintf("Hello %s, your %s of %.2f was declined.", user.Name, verb, txn.Amount)
	}
	s.sendSMS(ctx, user, message)
}

// SendBroadcast pushes to the shared topic and texts each resolved
// recipient. Recipients are resolved at dispatch time against current
// users, so the list reflects membership at send, not at compose.
func (s *notificationService) SendBroadcast(ctx context.Context, broadcast *models.Broadcast, recipients []*models.User) {
	if s.pushProvider != nil {
		_, err := s.pushProvider.SendToTopic(ctx, s.pushTopic, &push.NotificationRequest{
			Title: "CoopSave",
			Body:  broadcast.Message,
			Data: map[string]string{
				"broadcast_id": broadcast.ID.Hex(),
			},
		})
		if err != nil {
			s.logger.WithError(err).Warn("failed to push broadcast")
		}
	}

	if s.smsProvider == nil || len(recipients) == 0 {
		return
	}

	requests := make([]*sms.SMSRequest, 0, len(recipients))
	for _, user := range recipients {
		requests = append(requests, &sms.SMSRequest{
			To:      user.Phone,
			Message: broadcast.Message,
			Type:    "broadcast",
		})
	}

	if _, err := s.smsProvider.SendBulkSMS(ctx, requests); err != nil {
		s.logger.WithError(err).Warn("failed to send broadcast sms batch")
	}
}

func (s *notificationService) sendSMS(ctx context.Context, user *models.User, message string) {
	if s.smsProvider == nil || user.Phone == "" {
		return
	}

	_, err := s.smsProvider.SendSMS(ctx, &sms.SMSRequest{
		To:      user.Phone,
		Message: message,
		Type:    "transactional",
	})
	if err != nil {
		s.logger.WithUserID(user.ID).WithError(err).Warn("failed to send sms")
	}
}

func (s *notificationService) sendEmail(ctx context.Context, user *models.User, subject, body string) {
	if s.emailSender == nil || user.Email == "" {
		return
	}

	if err := s.emailSender.SendEmail(ctx, user.Email, subject, body); err != nil {
		s.logger.WithUserID(user.ID).WithError(err).Warn("failed to send email")
	}
}
