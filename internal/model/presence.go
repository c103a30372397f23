package model

import (
	"time"

	"github.com/google/uuid"
)

type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceAway    PresenceStatus = "away"
	PresenceBusy    PresenceStatus = "busy"
	PresenceDND     PresenceStatus = "dnd"
	PresenceOffline PresenceStatus = "offline"
)

func (s PresenceStatus) Valid() bool {
	switch s {
	case PresenceOnline, PresenceAway, PresenceBusy, PresenceDND, PresenceOffline:
		return true
	}
	return false
}

// Presence is a user's reachability state. Staleness is applied at
// read time: a non-offline stored status older than the TTL is
// reported as offline without rewriting the entry.
type Presence struct {
	UserID        uuid.UUID      `json:"user_id"`
	Status        PresenceStatus `json:"status"`
	CustomMessage *string        `json:"custom_message,omitempty"`
	LastSeen      time.Time      `json:"last_seen"`
}

type UpdatePresenceRequest struct {
	Status        PresenceStatus `json:"status" validate:"required"`
	CustomMessage *string        `json:"custom_message"`
}

type GetPresenceRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" validate:"required,min=1"`
}
