package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SwapStatus string

const (
	SwapStatusPending        SwapStatus = "pending"
	SwapStatusAccepted       SwapStatus = "accepted"
	SwapStatusDeclined       SwapStatus = "declined"
	SwapStatusPendingManager SwapStatus = "pending_manager"
)

// Terminal reports whether no further transition is allowed.
func (s SwapStatus) Terminal() bool {
	return s == SwapStatusAccepted || s == SwapStatusDeclined
}

// Shift identifies one work shift being offered in a swap.
type Shift struct {
	Date  string `json:"date" validate:"required"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

func (s Shift) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Shift) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Shift", src)
	}
	return json.Unmarshal(b, s)
}

// ScheduleSwapRequest is a negotiation between two employees to
// exchange shifts, optionally gated on manager approval.
type ScheduleSwapRequest struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	CompanyID      uuid.UUID  `db:"company_id" json:"company_id"`
	RequesterID    uuid.UUID  `db:"requester_id" json:"requester_id"`
	TargetID       uuid.UUID  `db:"target_id" json:"target_id"`
	RequesterShift Shift      `db:"requester_shift" json:"requester_shift"`
	TargetShift    Shift      `db:"target_shift" json:"target_shift"`
	Reason         string     `db:"reason" json:"reason,omitempty"`
	Status         SwapStatus `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt     *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

type RequestSwapRequest struct {
	TargetID       uuid.UUID `json:"target_id" validate:"required"`
	RequesterShift Shift     `json:"requester_shift" validate:"required"`
	TargetShift    Shift     `json:"target_shift" validate:"required"`
	Reason         string    `json:"reason" validate:"max=500"`
}

type RespondSwapRequest struct {
	Accept bool `json:"accept"`
}

// SwapRequestLists splits a user's swap requests by direction.
type SwapRequestLists struct {
	Incoming []*ScheduleSwapRequest `json:"incoming"`
	Outgoing []*ScheduleSwapRequest `json:"outgoing"`
}
