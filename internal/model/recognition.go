package model

import (
	"time"

	"github.com/google/uuid"
)

// Badge is a catalog entry. The catalog is held server-side; point
// values are snapshotted onto each award so historical totals stay
// stable when the catalog changes.
type Badge struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	PointValue int    `json:"point_value"`
}

// Recognition is an immutable kudos award record.
type Recognition struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CompanyID   uuid.UUID `db:"company_id" json:"company_id"`
	SenderID    uuid.UUID `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID `db:"recipient_id" json:"recipient_id"`
	Type        string    `db:"recognition_type" json:"recognition_type"`
	Message     string    `db:"message" json:"message"`
	BadgeKey    string    `db:"badge_key" json:"badge_key"`
	BadgeName   string    `db:"badge_name" json:"badge_name"`
	BadgeIcon   string    `db:"badge_icon" json:"badge_icon"`
	Points      int       `db:"points" json:"points"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// BadgeCount is one row of the per-user badge breakdown.
type BadgeCount struct {
	BadgeKey  string `db:"badge_key" json:"badge_key"`
	BadgeName string `db:"badge_name" json:"badge_name"`
	Count     int    `db:"count" json:"count"`
}

// RecognitionStats is a derived aggregate, always computed from the
// ledger rather than maintained as counters.
type RecognitionStats struct {
	LifetimePoints int          `json:"lifetime_points"`
	TotalReceived  int          `json:"total_received"`
	TotalSent      int          `json:"total_sent"`
	BadgeBreakdown []BadgeCount `json:"badge_breakdown"`
}

type SendRecognitionRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	Type        string    `json:"recognition_type" validate:"required"`
	Message     string    `json:"message" validate:"required,max=1000"`
	IsPublic    *bool     `json:"is_public"`
}
