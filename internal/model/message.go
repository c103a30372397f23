package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeDirect       MessageType = "direct"
	MessageTypeGroup        MessageType = "group"
	MessageTypeAnnouncement MessageType = "announcement"
	MessageTypeRecognition  MessageType = "recognition"
)

type MessagePriority string

const (
	PriorityLow    MessagePriority = "low"
	PriorityNormal MessagePriority = "normal"
	PriorityHigh   MessagePriority = "high"
	PriorityUrgent MessagePriority = "urgent"
)

func (p MessagePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// Attachment is a file reference carried by a message. The blob itself
// lives in object storage; only metadata is kept here.
type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// AttachmentList is stored as a jsonb column.
type AttachmentList []Attachment

func (a AttachmentList) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *AttachmentList) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into AttachmentList", src)
	}
	return json.Unmarshal(b, a)
}

// Reaction is one user's emoji reaction to a message. The repository
// enforces UNIQUE(message_id, user_id, emoji) so re-adding is a no-op.
type Reaction struct {
	MessageID uuid.UUID `db:"message_id" json:"message_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Emoji     string    `db:"emoji" json:"emoji"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Message is immutable once created except for status, read_at,
// is_pinned and its reaction set. Exactly one of RecipientID and
// ChannelID is set: RecipientID for direct messages, ChannelID for
// group/announcement traffic.
type Message struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	CompanyID   uuid.UUID       `db:"company_id" json:"company_id"`
	SenderID    uuid.UUID       `db:"sender_id" json:"sender_id"`
	RecipientID *uuid.UUID      `db:"recipient_id" json:"recipient_id,omitempty"`
	ChannelID   *uuid.UUID      `db:"channel_id" json:"channel_id,omitempty"`
	Type        MessageType     `db:"message_type" json:"message_type"`
	Content     string          `db:"content" json:"content"`
	Subject     *string         `db:"subject" json:"subject,omitempty"`
	Priority    MessagePriority `db:"priority" json:"priority"`
	Status      MessageStatus   `db:"status" json:"status"`
	IsPinned    bool            `db:"is_pinned" json:"is_pinned"`
	Attachments AttachmentList  `db:"attachments" json:"attachments,omitempty"`
	Reactions   []Reaction      `db:"-" json:"reactions,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ReadAt      *time.Time      `db:"read_at" json:"read_at,omitempty"`
}

type SendDirectMessageRequest struct {
	RecipientID uuid.UUID       `json:"recipient_id" validate:"required"`
	Content     string          `json:"content" validate:"required"`
	Subject     *string         `json:"subject"`
	Priority    MessagePriority `json:"priority"`
	Attachments AttachmentList  `json:"attachments"`
}

type SendChannelMessageRequest struct {
	Content     string          `json:"content" validate:"required"`
	Priority    MessagePriority `json:"priority"`
	Mentions    []uuid.UUID     `json:"mentions"`
	Attachments AttachmentList  `json:"attachments"`
}

type ReactRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

type PinRequest struct {
	Pin bool `json:"pin"`
}

type SearchQuery struct {
	Term      string      `form:"q"`
	Type      MessageType `form:"type"`
	ChannelID *uuid.UUID  `form:"channel_id"`
	SenderID  *uuid.UUID  `form:"sender_id"`
	Limit     int         `form:"limit"`
}
