package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeRecognition  NotificationType = "recognition"
	NotificationTypeMessage      NotificationType = "message"
	NotificationTypeScheduleSwap NotificationType = "schedule_swap"
	NotificationTypeAnnouncement NotificationType = "announcement"
	NotificationTypeSystem       NotificationType = "system"
)

// Notification is one entry of a user's feed. Read only ever moves
// false -> true.
type Notification struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	RecipientID uuid.UUID        `db:"recipient_id" json:"recipient_id"`
	Type        NotificationType `db:"notification_type" json:"notification_type"`
	Message     string           `db:"message" json:"message"`
	Data        JSONMap          `db:"data" json:"data,omitempty"`
	Read        bool             `db:"read" json:"read"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

type MarkNotificationsReadRequest struct {
	NotificationIDs []uuid.UUID `json:"notification_ids" validate:"required,min=1"`
}

// NotificationFeed is the list response: entries newest-first plus the
// authoritative unread count computed at query time.
type NotificationFeed struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
}
