package push

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/aviders/basket-backend/pkg/config"
)

// Message is a reminder notification addressed to a topic.
type Message struct {
	Type      string
	Title     string
	Body      string
	ProductID string
	Count     int
}

// Sender delivers push messages. Satisfied by *Client; fakes implement it in
// tests.
type Sender interface {
	Send(ctx context.Context, topic string, msg Message) error
}

// Client sends push notifications through Firebase Cloud Messaging.
type Client struct {
	messenger *messaging.Client
}

// New initializes the FCM client. Credentials come from the configured service
// account JSON when set, otherwise from application default credentials.
func New(ctx context.Context, cfg config.FirebaseConfig) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	messenger, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing fcm messaging: %w", err)
	}
	return &Client{messenger: messenger}, nil
}

// UserTopic builds the per-user FCM topic name.
func UserTopic(userID string) string {
	return "user_" + userID
}

// Send publishes the message to the given topic.
func (c *Client) Send(ctx context.Context, topic string, msg Message) error {
	data := map[string]string{
		"type": msg.Type,
	}
	if msg.ProductID != "" {
		data["productId"] = msg.ProductID
	}
	if msg.Count > 0 {
		data["count"] = strconv.Itoa(msg.Count)
	}
	_, err := c.messenger.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("sending fcm message to %s: %w", topic, err)
	}
	return nil
}
