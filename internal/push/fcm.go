package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMGateway sends messages through Firebase Cloud Messaging.
type FCMGateway struct {
	client *messaging.Client
}

// NewFCMGateway initializes the Firebase app from a service-account
// credentials file and returns a messaging gateway.
func NewFCMGateway(ctx context.Context, credentialsFile string) (*FCMGateway, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("messaging client: %w", err)
	}
	return &FCMGateway{client: client}, nil
}

// Send delivers one message. Silent messages are data-only, marked
// high-priority and background-available so the OS wakes the receiving app
// promptly; visible messages carry a notification block.
func (g *FCMGateway) Send(ctx context.Context, msg *Message) error {
	out := &messaging.Message{
		Token: msg.Token,
		Data:  msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	if msg.Silent() {
		out.APNS = &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-push-type": "background",
				"apns-priority":  "5",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{ContentAvailable: true},
			},
		}
	} else {
		out.Notification = &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		}
		out.APNS = &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
		}
	}

	if _, err := g.client.Send(ctx, out); err != nil {
		if messaging.IsUnregistered(err) {
			return fmt.Errorf("send to %s: %w", msg.Token, ErrUnregistered)
		}
		return fmt.Errorf("send to %s: %w", msg.Token, err)
	}
	return nil
}
