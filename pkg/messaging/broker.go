package messaging

import (
	"context"
)

// Broker defines the interface for message brokers used to push
// realtime events out to connected clients.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Topics published by the notification pipeline. Consumers subscribe to
// the per-user topic to receive that user's feed events.
const (
	TopicNotifications = "notifications"
)

// UserTopic returns the per-user notification topic.
func UserTopic(userID string) string {
	return TopicNotifications + "." + userID
}

// Event is the envelope published to the broker.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
