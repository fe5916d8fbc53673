package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// NewFCMSender builds a sender backed by Firebase Cloud Messaging. The
// credentials file is a Firebase service account key.
func NewFCMSender(ctx context.Context, credentialsFile string) (*fcmSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %v", err)
	}

	return &fcmSender{client}, nil
}

type fcmSender struct {
	client *messaging.Client
}

func (f fcmSender) Send(ctx context.Context, token string, payload Payload) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	_, err := f.client.Send(ctx, message)
	if err == nil {
		return nil
	}

	if messaging.IsUnregistered(err) || errorutils.IsInvalidArgument(err) {
		return fmt.Errorf("%w: %v", ErrSubscriptionGone, err)
	}
	return err
}
