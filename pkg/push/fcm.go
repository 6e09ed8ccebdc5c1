package push

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMProvider delivers dashboard and member notifications through Firebase
// Cloud Messaging, to single devices or to broadcast topics.
type FCMProvider struct {
	client *messaging.Client
}

func NewFCMProvider(credentialsFile string) (*FCMProvider, error) {
	ctx := context.Background()

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm client: %w", err)
	}

	return &FCMProvider{client: client}, nil
}

func (f *FCMProvider) SendNotification(ctx context.Context, request *NotificationRequest) (*NotificationResponse, error) {
	message := &messaging.Message{
		Token: request.Token,
		Topic: request.Topic,
		Data:  request.Data,
	}
	if message.Token == "" && message.Topic == "" {
		return nil, errors.New("push: notification needs a token or a topic")
	}
	if request.Title != "" || request.Body != "" {
		message.Notification = &messaging.Notification{
			Title: request.Title,
			Body:  request.Body,
		}
	}

	id, err := f.client.Send(ctx, message)
	if err != nil {
		return &NotificationResponse{Success: false, Error: err.Error()}, err
	}
	return &NotificationResponse{MessageID: id, Success: true}, nil
}

// SendToTopic overrides any device token on the request so the message
// fans out to every subscriber of the topic.
func (f *FCMProvider) SendToTopic(ctx context.Context, topic string, request *NotificationRequest) (*NotificationResponse, error) {
	req := *request
	req.Topic = topic
	req.Token = ""
	return f.SendNotification(ctx, &req)
}

func (f *FCMProvider) SubscribeToTopic(ctx context.Context, tokens []string, topic string) error {
	_, err := f.client.SubscribeToTopic(ctx, tokens, topic)
	return err
}

func (f *FCMProvider) UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) error {
	_, err := f.client.UnsubscribeFromTopic(ctx, tokens, topic)
	return err
}
