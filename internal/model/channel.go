package model

import (
	"time"

	"github.com/google/uuid"
)

type ChannelType string

const (
	ChannelTypeTopic        ChannelType = "topic"
	ChannelTypeTeam         ChannelType = "team"
	ChannelTypeAnnouncement ChannelType = "announcement"
)

type ChannelRole string

const (
	ChannelRoleMember    ChannelRole = "member"
	ChannelRoleModerator ChannelRole = "moderator"
)

// Channel is a named group messaging space. Name is unique per company,
// case-insensitively. MemberCount is always derived from the member
// set, never stored on the channel row.
type Channel struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	CompanyID   uuid.UUID   `db:"company_id" json:"company_id"`
	Name        string      `db:"name" json:"name"`
	Type        ChannelType `db:"channel_type" json:"channel_type"`
	Description string      `db:"description" json:"description,omitempty"`
	IsPrivate   bool        `db:"is_private" json:"is_private"`
	CreatedBy   uuid.UUID   `db:"created_by" json:"created_by"`
	MemberCount int         `db:"member_count" json:"member_count"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

type ChannelMember struct {
	ChannelID uuid.UUID   `db:"channel_id" json:"channel_id"`
	UserID    uuid.UUID   `db:"user_id" json:"user_id"`
	Role      ChannelRole `db:"role" json:"role"`
	JoinedAt  time.Time   `db:"joined_at" json:"joined_at"`
}

type CreateChannelRequest struct {
	Name        string      `json:"name" validate:"required,max=80"`
	Type        ChannelType `json:"channel_type"`
	Description string      `json:"description" validate:"max=500"`
	IsPrivate   bool        `json:"is_private"`
	Members     []uuid.UUID `json:"members"`
}
