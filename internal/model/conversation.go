package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConversationID returns the canonical id of the direct conversation
// between two users. The pair is ordered so both parties derive the
// same id regardless of who initiated.
func ConversationID(a, b uuid.UUID) string {
	lo, hi := a, b
	if hi.String() < lo.String() {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("%s:%s", lo, hi)
}

// ConversationSummary is a read projection over direct messages, never
// stored. UnreadCount counts messages addressed to the viewer that are
// not yet read, computed at query time.
type ConversationSummary struct {
	ConversationID string         `db:"-" json:"conversation_id"`
	OtherUserID    uuid.UUID      `db:"other_user_id" json:"other_user_id"`
	LastMessage    *Message       `db:"-" json:"last_message,omitempty"`
	UnreadCount    int            `db:"unread_count" json:"unread_count"`
	LastActivity   time.Time      `db:"last_activity" json:"last_activity"`
	OtherPresence  PresenceStatus `db:"-" json:"other_presence,omitempty"`
}

// Conversation is the single-conversation view returned by the detail
// endpoint.
type Conversation struct {
	ConversationID string     `json:"conversation_id"`
	OtherUserID    uuid.UUID  `json:"other_user_id"`
	Messages       []*Message `json:"messages"`
	UnreadCount    int        `json:"unread_count"`
}
