package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	Get(ctx context.Context, id uuid.UUID) (*model.Message, error)

	// ListConversation returns the direct messages between two users,
	// newest first.
	ListConversation(ctx context.Context, companyID, userA, userB uuid.UUID, limit int) ([]*model.Message, error)
	// ListConversationSummaries returns one row per counterpart the
	// user has exchanged direct messages with, unread counts computed
	// by counting unread rows.
	ListConversationSummaries(ctx context.Context, companyID, userID uuid.UUID) ([]*model.ConversationSummary, error)
	CountUnreadDirect(ctx context.Context, companyID, userID uuid.UUID) (int, error)
	CountUnreadBetween(ctx context.Context, companyID, viewerID, otherID uuid.UUID) (int, error)

	ListChannelMessages(ctx context.Context, channelID uuid.UUID, before time.Time, limit int) ([]*model.Message, error)
	ListPinnedMessages(ctx context.Context, channelID uuid.UUID) ([]*model.Message, error)

	// MarkDirectRead transitions a direct message to read for its
	// recipient. Idempotent: already-read rows are left untouched.
	MarkDirectRead(ctx context.Context, messageID, readerID uuid.UUID) error
	// MarkDelivered moves still-"sent" messages from one sender to the
	// recipient forward to "delivered", called when the recipient
	// fetches the conversation.
	MarkDelivered(ctx context.Context, recipientID, senderID uuid.UUID) error
	// MarkChannelRead records a channel member's read receipt.
	// Idempotent via ON CONFLICT DO NOTHING.
	MarkChannelRead(ctx context.Context, messageID, readerID uuid.UUID) error

	// AddReaction upserts; duplicate (message, user, emoji) is a no-op.
	AddReaction(ctx context.Context, reaction *model.Reaction) error
	ListReactions(ctx context.Context, messageID uuid.UUID) ([]model.Reaction, error)

	SetPinned(ctx context.Context, messageID uuid.UUID, pinned bool) error

	Search(ctx context.Context, companyID, viewerID uuid.UUID, q *model.SearchQuery) ([]*model.Message, error)
}

type ChannelRepository interface {
	Create(ctx context.Context, channel *model.Channel, members []*model.ChannelMember) error
	Get(ctx context.Context, id uuid.UUID) (*model.Channel, error)
	// List returns channels visible to the user: public ones plus
	// private ones the user belongs to.
	List(ctx context.Context, companyID, userID uuid.UUID) ([]*model.Channel, error)
	NameExists(ctx context.Context, companyID uuid.UUID, name string) (bool, error)

	AddMember(ctx context.Context, member *model.ChannelMember) error
	RemoveMember(ctx context.Context, channelID, userID uuid.UUID) error
	IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error)
	GetMemberRole(ctx context.Context, channelID, userID uuid.UUID) (model.ChannelRole, error)
	ListMemberIDs(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error)
}

type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	Get(ctx context.Context, id uuid.UUID) (*model.Announcement, error)
	// List returns announcements for the company newest first,
	// filtering expired ones unless includeExpired is set. The
	// viewer's acknowledgment state is joined in.
	List(ctx context.Context, companyID, viewerID uuid.UUID, includeExpired bool) ([]*model.Announcement, error)
	// Acknowledge is idempotent.
	Acknowledge(ctx context.Context, announcementID, userID uuid.UUID) error
}

type RecognitionRepository interface {
	Create(ctx context.Context, rec *model.Recognition) error
	ListPublicFeed(ctx context.Context, companyID uuid.UUID, limit int) ([]*model.Recognition, error)
	LifetimePoints(ctx context.Context, userID uuid.UUID) (int, error)
	StatsForUser(ctx context.Context, userID uuid.UUID) (*model.RecognitionStats, error)
}

type SwapRepository interface {
	Create(ctx context.Context, req *model.ScheduleSwapRequest) error
	Get(ctx context.Context, id uuid.UUID) (*model.ScheduleSwapRequest, error)
	// TransitionStatus performs a compare-and-swap on (id, from). It
	// returns false when the row was not in the expected state, which
	// is how concurrent losers are detected.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.SwapStatus, resolvedAt *time.Time) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) (*model.SwapRequestLists, error)
	CountPendingForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
	// MarkRead flips read=true for the given ids owned by the
	// recipient; foreign ids are silently skipped.
	MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

type PresenceStore interface {
	Update(p *model.Presence)
	Get(userID uuid.UUID) (*model.Presence, bool)
}

type EmployeeDirectory interface {
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*model.Employee, error)
	ListByDepartment(ctx context.Context, companyID uuid.UUID, department string) ([]*model.Employee, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Employee, error)
}
