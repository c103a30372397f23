package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/config"
	"github.com/workstream/comms-api/internal/model"
	"github.com/workstream/comms-api/internal/repository"
	"github.com/workstream/comms-api/internal/service/notification"
	"github.com/workstream/comms-api/internal/service/presence"
	apperrors "github.com/workstream/comms-api/pkg/errors"
	"github.com/workstream/comms-api/pkg/logger"
	"github.com/workstream/comms-api/pkg/metrics"
)

const (
	defaultConversationLimit = 100
	maxSearchLimit           = 50
)

type Service struct {
	messages repository.MessageRepository
	channels repository.ChannelRepository
	notifier notification.Service
	presence *presence.Service
	policy   config.MessagingConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	messages repository.MessageRepository,
	channels repository.ChannelRepository,
	notifier notification.Service,
	presenceSvc *presence.Service,
	policy config.MessagingConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		messages: messages,
		channels: channels,
		notifier: notifier,
		presence: presenceSvc,
		policy:   policy,
		logger:   log,
		metrics:  m,
	}
}

func (s *Service) SendDirect(ctx context.Context, companyID, senderID uuid.UUID, req *model.SendDirectMessageRequest) (*model.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.Validation("message content is empty", nil)
	}
	if senderID == req.RecipientID {
		return nil, apperrors.Validation("cannot send a message to yourself", nil)
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.Valid() {
		return nil, apperrors.Validation("invalid priority", nil)
	}

	recipientID := req.RecipientID
	msg := &model.Message{
		CompanyID:   companyID,
		SenderID:    senderID,
		RecipientID: &recipientID,
		Type:        model.MessageTypeDirect,
		Content:     req.Content,
		Subject:     req.Subject,
		Priority:    priority,
		Status:      model.MessageStatusSent,
		Attachments: req.Attachments,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	if s.metrics != nil {
		s.metrics.MessagesSent.WithLabelValues(string(model.MessageTypeDirect)).Inc()
	}

	if err := s.notifier.Enqueue(ctx, recipientID, model.NotificationTypeMessage, "You have a new message", model.JSONMap{
		"message_id":      msg.ID.String(),
		"sender_id":       senderID.String(),
		"conversation_id": model.ConversationID(senderID, recipientID),
		"priority":        string(priority),
	}); err != nil {
		return nil, fmt.Errorf("failed to notify recipient: %w", err)
	}
	return msg, nil
}

// GetConversation returns the thread with another user from the
// viewer's side. Messages addressed to the viewer that are still
// "sent" are bumped to "delivered" as a side effect.
func (s *Service) GetConversation(ctx context.Context, companyID, viewerID, otherID uuid.UUID) (*model.Conversation, error) {
	if err := s.messages.MarkDelivered(ctx, viewerID, otherID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListConversation(ctx, companyID, viewerID, otherID, defaultConversationLimit)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.CountUnreadBetween(ctx, companyID, viewerID, otherID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	return &model.Conversation{
		ConversationID: model.ConversationID(viewerID, otherID),
		OtherUserID:    otherID,
		Messages:       messages,
		UnreadCount:    unread,
	}, nil
}

// ListConversations is the conversation index: one summary per
// counterpart, newest activity first, enriched with the counterpart's
// effective presence.
func (s *Service) ListConversations(ctx context.Context, companyID, viewerID uuid.UUID) ([]*model.ConversationSummary, int, error) {
	summaries, err := s.messages.ListConversationSummaries(ctx, companyID, viewerID)
	if err != nil {
		return nil, 0, err
	}
	totalUnread, err := s.messages.CountUnreadDirect(ctx, companyID, viewerID)
	if err != nil {
		return nil, 0, err
	}
	for _, summary := range summaries {
		summary.OtherPresence = s.presence.EffectiveStatus(summary.OtherUserID)
	}
	if summaries == nil {
		summaries = []*model.ConversationSummary{}
	}
	return summaries, totalUnread, nil
}

func (s *Service) SendToChannel(ctx context.Context, companyID, senderID, channelID uuid.UUID, req *model.SendChannelMessageRequest) (*model.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.Validation("message content is empty", nil)
	}

	channel, err := s.channels.Get(ctx, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("channel", err)
	}
	if err != nil {
		return nil, err
	}

	isMember, err := s.channels.IsMember(ctx, channelID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperrors.NotAMember(channel.Name)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.Valid() {
		return nil, apperrors.Validation("invalid priority", nil)
	}

	msgType := model.MessageTypeGroup
	if channel.Type == model.ChannelTypeAnnouncement {
		msgType = model.MessageTypeAnnouncement
	}

	chID := channelID
	msg := &model.Message{
		CompanyID:   companyID,
		SenderID:    senderID,
		ChannelID:   &chID,
		Type:        msgType,
		Content:     req.Content,
		Priority:    priority,
		Status:      model.MessageStatusSent,
		Attachments: req.Attachments,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	if s.metrics != nil {
		s.metrics.MessagesSent.WithLabelValues(string(msgType)).Inc()
	}

	s.fanOutChannelMessage(ctx, channel, msg, senderID, req.Mentions)
	return msg, nil
}

// fanOutChannelMessage notifies mentioned members always; the rest of
// the membership only when the deployment opts in.
func (s *Service) fanOutChannelMessage(ctx context.Context, channel *model.Channel, msg *model.Message, senderID uuid.UUID, mentions []uuid.UUID) {
	mentioned := make(map[uuid.UUID]bool, len(mentions))
	for _, id := range mentions {
		mentioned[id] = true
	}

	memberIDs, err := s.channels.ListMemberIDs(ctx, channel.ID)
	if err != nil {
		s.logger.Error(err, "failed to list channel members for fan-out", "channel_id", channel.ID.String())
		return
	}
	data := model.JSONMap{
		"message_id": msg.ID.String(),
		"channel_id": channel.ID.String(),
		"sender_id":  senderID.String(),
	}
	for _, id := range memberIDs {
		if id == senderID {
			continue
		}
		var err error
		switch {
		case mentioned[id]:
			err = s.notifier.Enqueue(ctx, id, model.NotificationTypeMessage,
				fmt.Sprintf("You were mentioned in #%s", channel.Name), data)
		case channel.Type == model.ChannelTypeAnnouncement:
			err = s.notifier.Enqueue(ctx, id, model.NotificationTypeAnnouncement,
				fmt.Sprintf("New announcement in #%s", channel.Name), data)
		case s.policy.NotifyAllChannelMembers:
			err = s.notifier.Enqueue(ctx, id, model.NotificationTypeMessage,
				fmt.Sprintf("New message in #%s", channel.Name), data)
		}
		if err != nil {
			s.logger.Error(err, "failed to enqueue channel notification",
				"channel_id", channel.ID.String(), "recipient_id", id.String())
		}
	}
}

// MarkRead is idempotent: re-reading an already-read message resolves
// to success without touching the row.
func (s *Service) MarkRead(ctx context.Context, readerID, messageID uuid.UUID) error {
	msg, err := s.messages.Get(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("message", err)
	}
	if err != nil {
		return err
	}

	if msg.RecipientID != nil {
		if *msg.RecipientID != readerID {
			return apperrors.Forbidden("only the recipient can mark a message read", nil)
		}
		return s.messages.MarkDirectRead(ctx, messageID, readerID)
	}

	isMember, err := s.channels.IsMember(ctx, *msg.ChannelID, readerID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.Forbidden("only channel members can mark a message read", nil)
	}
	return s.messages.MarkChannelRead(ctx, messageID, readerID)
}

func (s *Service) AddReaction(ctx context.Context, userID, messageID uuid.UUID, emoji string) error {
	if strings.TrimSpace(emoji) == "" {
		return apperrors.Validation("emoji is required", nil)
	}

	msg, err := s.messages.Get(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("message", err)
	}
	if err != nil {
		return err
	}
	if err := s.ensureVisible(ctx, msg, userID); err != nil {
		return err
	}

	return s.messages.AddReaction(ctx, &model.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	})
}

// Pin toggles the channel-scoped pin flag; only moderators may do it.
func (s *Service) Pin(ctx context.Context, userID, messageID uuid.UUID, pin bool) error {
	msg, err := s.messages.Get(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("message", err)
	}
	if err != nil {
		return err
	}
	if msg.ChannelID == nil {
		return apperrors.Validation("only channel messages can be pinned", nil)
	}

	role, err := s.channels.GetMemberRole(ctx, *msg.ChannelID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.Forbidden("only channel moderators can pin messages", nil)
	}
	if err != nil {
		return err
	}
	if role != model.ChannelRoleModerator {
		return apperrors.Forbidden("only channel moderators can pin messages", nil)
	}
	return s.messages.SetPinned(ctx, messageID, pin)
}

func (s *Service) Search(ctx context.Context, companyID, viewerID uuid.UUID, q *model.SearchQuery) ([]*model.Message, error) {
	if strings.TrimSpace(q.Term) == "" {
		return nil, apperrors.Validation("search term is required", nil)
	}
	if q.Limit <= 0 || q.Limit > maxSearchLimit {
		q.Limit = maxSearchLimit
	}
	return s.messages.Search(ctx, companyID, viewerID, q)
}

// ListPinned returns a channel's pinned messages, newest pin first.
// Visibility follows the same rules as the channel timeline.
func (s *Service) ListPinned(ctx context.Context, viewerID, channelID uuid.UUID) ([]*model.Message, error) {
	channel, err := s.channels.Get(ctx, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("channel", err)
	}
	if err != nil {
		return nil, err
	}
	if channel.IsPrivate {
		isMember, err := s.channels.IsMember(ctx, channelID, viewerID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, apperrors.NotAMember(channel.Name)
		}
	}
	return s.messages.ListPinnedMessages(ctx, channelID)
}

func (s *Service) CountUnread(ctx context.Context, companyID, viewerID uuid.UUID) (int, error) {
	return s.messages.CountUnreadDirect(ctx, companyID, viewerID)
}

func (s *Service) ensureVisible(ctx context.Context, msg *model.Message, userID uuid.UUID) error {
	if msg.RecipientID != nil {
		if msg.SenderID != userID && *msg.RecipientID != userID {
			return apperrors.Forbidden("message is not visible to you", nil)
		}
		return nil
	}
	isMember, err := s.channels.IsMember(ctx, *msg.ChannelID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		channel, err := s.channels.Get(ctx, *msg.ChannelID)
		if err != nil {
			return apperrors.Forbidden("message is not visible to you", nil)
		}
		if channel.IsPrivate {
			return apperrors.Forbidden("message is not visible to you", nil)
		}
	}
	return nil
}

// ListChannelMessages pages a channel timeline newest-first. A private
// channel requires membership; public channels are readable by anyone
// in the company.
func (s *Service) ListChannelMessages(ctx context.Context, viewerID, channelID uuid.UUID, before time.Time, limit int) ([]*model.Message, bool, error) {
	channel, err := s.channels.Get(ctx, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, apperrors.NotFound("channel", err)
	}
	if err != nil {
		return nil, false, err
	}
	if channel.IsPrivate {
		isMember, err := s.channels.IsMember(ctx, channelID, viewerID)
		if err != nil {
			return nil, false, err
		}
		if !isMember {
			return nil, false, apperrors.NotAMember(channel.Name)
		}
	}

	if limit <= 0 || limit > s.policy.ChannelPageSize {
		limit = s.policy.ChannelPageSize
	}
	if before.IsZero() {
		before = time.Now()
	}

	messages, err := s.messages.ListChannelMessages(ctx, channelID, before, limit+1)
	if err != nil {
		return nil, false, err
	}
	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	return messages, hasMore, nil
}
