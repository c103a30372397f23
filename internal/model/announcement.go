package model

import (
	"time"

	"github.com/google/uuid"
)

type AnnouncementAudience string

const (
	AudienceCompany    AnnouncementAudience = "company"
	AudienceDepartment AnnouncementAudience = "department"
)

// Announcement is a company-wide broadcast. It is listed through its
// own endpoints rather than a channel timeline so that expiry and
// acknowledgment tracking stay with the announcement row.
type Announcement struct {
	ID                      uuid.UUID            `db:"id" json:"id"`
	CompanyID               uuid.UUID            `db:"company_id" json:"company_id"`
	AuthorID                uuid.UUID            `db:"author_id" json:"author_id"`
	Title                   string               `db:"title" json:"title"`
	Content                 string               `db:"content" json:"content"`
	Priority                MessagePriority      `db:"priority" json:"priority"`
	Audience                AnnouncementAudience `db:"audience" json:"audience"`
	Department              *string              `db:"department" json:"department,omitempty"`
	RequiresAcknowledgment  bool                 `db:"requires_acknowledgment" json:"requires_acknowledgment"`
	ExpiresAt               *time.Time           `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt               time.Time            `db:"created_at" json:"created_at"`
	AcknowledgedByRequester bool                 `db:"acknowledged" json:"acknowledged"`
}

type AnnouncementAck struct {
	AnnouncementID uuid.UUID `db:"announcement_id" json:"announcement_id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	AckedAt        time.Time `db:"acked_at" json:"acked_at"`
}

type PostAnnouncementRequest struct {
	Title                  string               `json:"title" validate:"required,max=200"`
	Content                string               `json:"content" validate:"required"`
	Priority               MessagePriority      `json:"priority"`
	Audience               AnnouncementAudience `json:"audience"`
	Department             *string              `json:"department"`
	RequiresAcknowledgment bool                 `json:"requires_acknowledgment"`
	ExpiresAt              *time.Time           `json:"expires_at"`
}
