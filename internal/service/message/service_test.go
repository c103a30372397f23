package message

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstream/comms-api/internal/config"
	"github.com/workstream/comms-api/internal/model"
	"github.com/workstream/comms-api/internal/repository/memory"
	"github.com/workstream/comms-api/internal/service/presence"
	apperrors "github.com/workstream/comms-api/pkg/errors"
	"github.com/workstream/comms-api/pkg/logger"
)

type enqueued struct {
	recipient uuid.UUID
	typ       model.NotificationType
	message   string
	data      model.JSONMap
}

type fakeNotifier struct {
	sent []enqueued
	err  error
}

func (f *fakeNotifier) Enqueue(_ context.Context, recipientID uuid.UUID, typ model.NotificationType, message string, data model.JSONMap) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, enqueued{recipientID, typ, message, data})
	return nil
}

func (f *fakeNotifier) List(context.Context, uuid.UUID, bool) (*model.NotificationFeed, error) {
	return &model.NotificationFeed{}, nil
}

func (f *fakeNotifier) MarkRead(context.Context, uuid.UUID, []uuid.UUID) error { return nil }

func (f *fakeNotifier) CountUnread(context.Context, uuid.UUID) (int, error) { return 0, nil }

type readKey struct {
	messageID uuid.UUID
	userID    uuid.UUID
}

type fakeMessageRepo struct {
	messages  []*model.Message
	reads     map[readKey]bool
	reactions map[string]int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		reads:     make(map[readKey]bool),
		reactions: make(map[string]int),
	}
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *model.Message) error {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMessageRepo) Get(_ context.Context, id uuid.UUID) (*model.Message, error) {
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeMessageRepo) ListConversation(_ context.Context, companyID, userA, userB uuid.UUID, limit int) ([]*model.Message, error) {
	var out []*model.Message
	for _, m := range f.messages {
		if m.CompanyID != companyID || m.RecipientID == nil {
			continue
		}
		direct := (m.SenderID == userA && *m.RecipientID == userB) || (m.SenderID == userB && *m.RecipientID == userA)
		if direct {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessageRepo) ListConversationSummaries(_ context.Context, companyID, userID uuid.UUID) ([]*model.ConversationSummary, error) {
	byOther := make(map[uuid.UUID]*model.ConversationSummary)
	for _, m := range f.messages {
		if m.CompanyID != companyID || m.RecipientID == nil {
			continue
		}
		var other uuid.UUID
		switch {
		case m.SenderID == userID:
			other = *m.RecipientID
		case *m.RecipientID == userID:
			other = m.SenderID
		default:
			continue
		}
		summary, ok := byOther[other]
		if !ok {
			summary = &model.ConversationSummary{OtherUserID: other}
			byOther[other] = summary
		}
		if *m.RecipientID == userID && m.ReadAt == nil {
			summary.UnreadCount++
		}
		summary.LastActivity = m.CreatedAt
	}
	out := make([]*model.ConversationSummary, 0, len(byOther))
	for _, s := range byOther {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	return out, nil
}

func (f *fakeMessageRepo) CountUnreadDirect(_ context.Context, companyID, userID uuid.UUID) (int, error) {
	count := 0
	for _, m := range f.messages {
		if m.CompanyID == companyID && m.RecipientID != nil && *m.RecipientID == userID && m.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) CountUnreadBetween(_ context.Context, companyID, viewerID, otherID uuid.UUID) (int, error) {
	count := 0
	for _, m := range f.messages {
		if m.CompanyID == companyID && m.RecipientID != nil && *m.RecipientID == viewerID && m.SenderID == otherID && m.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) ListChannelMessages(_ context.Context, channelID uuid.UUID, before time.Time, limit int) ([]*model.Message, error) {
	var out []*model.Message
	for i := len(f.messages) - 1; i >= 0; i-- {
		m := f.messages[i]
		if m.ChannelID != nil && *m.ChannelID == channelID && m.CreatedAt.Before(before) {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ListPinnedMessages(_ context.Context, channelID uuid.UUID) ([]*model.Message, error) {
	var out []*model.Message
	for _, m := range f.messages {
		if m.ChannelID != nil && *m.ChannelID == channelID && m.IsPinned {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkDirectRead(_ context.Context, messageID, readerID uuid.UUID) error {
	for _, m := range f.messages {
		if m.ID == messageID && m.RecipientID != nil && *m.RecipientID == readerID && m.ReadAt == nil {
			now := time.Now()
			m.ReadAt = &now
			m.Status = model.MessageStatusRead
		}
	}
	return nil
}

func (f *fakeMessageRepo) MarkDelivered(_ context.Context, recipientID, senderID uuid.UUID) error {
	for _, m := range f.messages {
		if m.RecipientID != nil && *m.RecipientID == recipientID && m.SenderID == senderID && m.Status == model.MessageStatusSent {
			m.Status = model.MessageStatusDelivered
		}
	}
	return nil
}

func (f *fakeMessageRepo) MarkChannelRead(_ context.Context, messageID, readerID uuid.UUID) error {
	f.reads[readKey{messageID, readerID}] = true
	return nil
}

func (f *fakeMessageRepo) AddReaction(_ context.Context, reaction *model.Reaction) error {
	key := reaction.MessageID.String() + "/" + reaction.UserID.String() + "/" + reaction.Emoji
	if _, ok := f.reactions[key]; !ok {
		f.reactions[key] = 1
	}
	return nil
}

func (f *fakeMessageRepo) ListReactions(context.Context, uuid.UUID) ([]model.Reaction, error) {
	return nil, nil
}

func (f *fakeMessageRepo) SetPinned(_ context.Context, messageID uuid.UUID, pinned bool) error {
	for _, m := range f.messages {
		if m.ID == messageID {
			m.IsPinned = pinned
		}
	}
	return nil
}

func (f *fakeMessageRepo) Search(_ context.Context, companyID, viewerID uuid.UUID, q *model.SearchQuery) ([]*model.Message, error) {
	return nil, nil
}

type memberKey struct {
	channelID uuid.UUID
	userID    uuid.UUID
}

type fakeChannelRepo struct {
	channels map[uuid.UUID]*model.Channel
	members  map[memberKey]model.ChannelRole
}

func newFakeChannelRepo() *fakeChannelRepo {
	return &fakeChannelRepo{
		channels: make(map[uuid.UUID]*model.Channel),
		members:  make(map[memberKey]model.ChannelRole),
	}
}

func (f *fakeChannelRepo) addChannel(ch *model.Channel) *model.Channel {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	f.channels[ch.ID] = ch
	return ch
}

func (f *fakeChannelRepo) addMember(channelID, userID uuid.UUID, role model.ChannelRole) {
	f.members[memberKey{channelID, userID}] = role
}

func (f *fakeChannelRepo) Create(_ context.Context, channel *model.Channel, members []*model.ChannelMember) error {
	f.addChannel(channel)
	for _, m := range members {
		f.addMember(channel.ID, m.UserID, m.Role)
	}
	return nil
}

func (f *fakeChannelRepo) Get(_ context.Context, id uuid.UUID) (*model.Channel, error) {
	ch, ok := f.channels[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return ch, nil
}

func (f *fakeChannelRepo) List(context.Context, uuid.UUID, uuid.UUID) ([]*model.Channel, error) {
	return nil, nil
}

func (f *fakeChannelRepo) NameExists(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}

func (f *fakeChannelRepo) AddMember(_ context.Context, member *model.ChannelMember) error {
	f.addMember(member.ChannelID, member.UserID, member.Role)
	return nil
}

func (f *fakeChannelRepo) RemoveMember(_ context.Context, channelID, userID uuid.UUID) error {
	delete(f.members, memberKey{channelID, userID})
	return nil
}

func (f *fakeChannelRepo) IsMember(_ context.Context, channelID, userID uuid.UUID) (bool, error) {
	_, ok := f.members[memberKey{channelID, userID}]
	return ok, nil
}

func (f *fakeChannelRepo) GetMemberRole(_ context.Context, channelID, userID uuid.UUID) (model.ChannelRole, error) {
	role, ok := f.members[memberKey{channelID, userID}]
	if !ok {
		return "", sql.ErrNoRows
	}
	return role, nil
}

func (f *fakeChannelRepo) ListMemberIDs(_ context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for key := range f.members {
		if key.channelID == channelID {
			out = append(out, key.userID)
		}
	}
	return out, nil
}

type fixture struct {
	svc      *Service
	messages *fakeMessageRepo
	channels *fakeChannelRepo
	notifier *fakeNotifier
}

func newFixture(policy config.MessagingConfig) *fixture {
	messages := newFakeMessageRepo()
	channels := newFakeChannelRepo()
	notifier := &fakeNotifier{}
	presenceSvc := presence.NewService(memory.NewPresenceStore(time.Hour), 5*time.Minute)
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return &fixture{
		svc:      NewService(messages, channels, notifier, presenceSvc, policy, log, nil),
		messages: messages,
		channels: channels,
		notifier: notifier,
	}
}

func TestSendDirectNotifiesRecipient(t *testing.T) {
	fx := newFixture(config.MessagingConfig{})
	company := uuid.New()
	sender := uuid.New()
	recipient := uuid.New()

	msg, err := fx.svc.SendDirect(context.Background(), company, sender, &model.SendDirectMessageRequest{
		RecipientID: recipient,
		Content:     "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MessageTypeDirect, msg.Type)
	assert.Equal(t, model.PriorityNormal, msg.Priority)
	assert.Equal(t, model.MessageStatusSent, msg.Status)

	require.Len(t, fx.notifier.sent, 1)
	assert.Equal(t, recipient, fx.notifier.sent[0].recipient)
	assert.Equal(t, model.ConversationID(sender, recipient), fx.notifier.sent[0].data["conversation_id"])
}

func TestSendDirectRejectsSelfAndEmpty(t *testing.T) {
	fx := newFixture(config.MessagingConfig{})
	user := uuid.New()

	_, err := fx.svc.SendDirect(context.Background(), uuid.New(), user, &model.SendDirectMessageRequest{
		RecipientID: user,
		Content:     "note to self",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = fx.svc.SendDirect(context.Background(), uuid.New(), user, &model.SendDirectMessageRequest{
		RecipientID: uuid.New(),
		Content:     "   ",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestGetConversationMarksDelivered(t *testing.T) {
	fx := newFixture(config.MessagingConfig{})
	company := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	_, err := fx.svc.SendDirect(context.Background(), company, alice, &model.SendDirectMessageRequest{
		RecipientID: bob,
		Content:     "hi bob",
	})
	require.NoError(t, err)

	conversation, err := fx.svc.GetConversation(context.Background(), company, bob, alice)
	require.NoError(t, err)
	require.Len(t, conversation.Messages, 1)
	assert.Equal(t, model.MessageStatusDelivered, conversation.Messages[0].Status)
	assert.Equal(t, 1, conversation.UnreadCount)
	assert.Equal(t, model.ConversationID(alice, bob), conversation.ConversationID)
}

func TestMarkReadIsIdempotentAndRecipientOnly(t *testing.T) {
	fx := newFixture(config.MessagingConfig{})
	company := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	msg, err := fx.svc.SendDirect(context.Background(), company, alice, &model.SendDirectMessageRequest{
		RecipientID: bob,
		Content:     "hi",
	})
	require.NoError(t, err)

	err = fx.svc.MarkRead(context.Background(), alice, msg.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, fx.svc.MarkRead(context.Background(), bob, msg.ID))
	first := *msg.ReadAt

	require.NoError(t, fx.svc.MarkRead(context.Background(), bob, msg.ID))
	assert.Equal(t, first, *msg.ReadAt)

	unread, err := fx.svc.CountUnread(context.Background(), company, bob)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestSendToChannelRequiresMembership(t *testing.T) {
	fx := newFixture(config.MessagingConfig{})
	company := uuid.New()
	channel := fx.channels.addChannel(&model.Channel{CompanyID: company, Name: "general", Type: model.ChannelTypeTopic})

	_, err := fx.svc.SendToChannel(context.Background(), company, uuid.New(), channel.ID, &model.SendChannelMessageRequest{Content: "hi"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotAMember))

	_, err = fx.svc.SendToChannel(context.Background(), company, uuid.New(), uuid.New(), &model.SendChannelMessageRequest{Content: "hi"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestChannelFanOutMentionsAlwaysNotified(t *testing.T) {
	fx := newFixture(config.MessagingConfig{NotifyAllChannelMembers: false})
	company := uuid.New()
	sender := uuid.New()
	mentioned := uuid.New()
	bystander := uuid.New()

	channel := fx.channels.addChannel(&model.Channel{CompanyID: company, Name: "ops", Type: model.ChannelTypeTopic})
	fx.channels.addMember(channel.ID, sender, model.ChannelRoleModerator)
	fx.channels.addMember(channel.ID, mentioned, model.ChannelRoleMember)
	fx.channels.addMember(channel.ID, bystander, model.ChannelRoleMember)

	_, err := fx.svc.SendToChannel(context.Background(), company, sender, channel.ID, &model.SendChannelMessageRequest{
		Content:  "please review @mentioned",
		Mentions: []uuid.UUID{mentioned},
	})
	require.NoError(t, err)

	require.Len(t, fx.notifier.sent, 1)
	assert.Equal(t, mentioned, fx.notifier.sent[0].recipient)
}

func TestChannelFanOutNotifyAllPolicy(t *testing.T) {
	fx := newFixture(config.MessagingConfig{NotifyAllChannelMembers: true})
	company := uuid.New()
	sender := uuid.New()
	member := uuid.New()

	channel := fx.channels.addChannel(&model.Channel{CompanyID: company, Name: "all-hands", Type: model.ChannelTypeAnnouncement})
	fx.channels.addMember(channel.ID, sender, model.ChannelRoleModerator)
	fx.channels.addMember(channel.ID, member, model.ChannelRoleMember)

	msg, err := fx.svc.SendToChannel(context.Background(), company, sender, channel.ID, &model.SendChannelMessageRequest{Content: "town hall at 3"})
	require.NoError(t, err)
	assert.Equal(t, model.MessageTypeAnnouncement, msg.Type)

	require.Len(t, fx.notifier.sent, 1)
	assert.Equal(t, member, fx.notifier.sent[0].recipient)
}

func TestAnnouncementChannelAlwaysNotifiesMembers(t *testing.T) {
	fx := newFixture(config.MessagingConfig{NotifyAllChannelMembers: false})
	company := uuid.New()
	sender := uuid.New()
	member := uuid.New()

	channel := fx.channels.addChannel(&model.Channel{CompanyID: company, Name: "bulletins", Type: model.ChannelTypeAnnouncement})
	fx.channels.addMember(channel.ID, sender, model.ChannelRoleModerator)
	fx.channels.addMember(channel.ID, member, model.ChannelRoleMember)

	_, err := fx.svc.SendToChannel(context.Background(), company, sender, channel.ID, &model.SendChannelMessageRequest{Content: "new handbook posted"})
	require.NoError(t, err)

	require.Len(t, fx.notifier.sent, 1)
	assert.Equal(t, member, fx.notifier.sent[0].recipient)
	assert.Equal(t, model.NotificationTypeAnnouncement, fx.notifier.sent[0].typ)
}

func TestChannelSendSurvivesNotifierFailure(t *testing.T) {
	fx := newFixture(config.MessagingConfig{NotifyAllChannelMembers: true})
	fx.notifier.err = errors.New("dispatcher unavailable")
	company := uuid.New()
	sender := uuid.New()
	member := uuid.New()

	channel := fx.channels.addChannel(&model.Channel{CompanyID: company, Name: "general", Type: model.ChannelTypeTopic})
	fx.channels.addMember(channel.ID, sender, model.ChannelRoleMember)
	fx.channels.addMember(channel.ID, member, model.ChannelRoleMember)

	msg, err := fx.svc.SendToChannel(context.Background(), company, sender, channel.ID, &model.SendChannelMessageRequest{Content: "still delivered"})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Empty(t, fx.notifier.sent)
}

func TestPinRequiresModerator(t *testing.T) {
	fx := newFixture(config.MessagingConfig{})
	company := uuid.New()
	moderator := uuid.New()
	member := uuid.New()

	channel := fx.channels.addChannel(&model.Channel{CompanyID: company, Name: "general", Type: model.ChannelTypeTopic})
	fx.channels.addMember(channel.ID, moderator, model.ChannelRoleModerator)
	fx.channels.addMember(channel.ID, member, model.ChannelRoleMember)

	msg, err := fx.svc.SendToChannel(context.Background(), company, member, channel.ID, &model.SendChannelMessageRequest{Content: "important"})
	require.NoError(t, err)

	err = fx.svc.Pin(context.Background(), member, msg.ID, true)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, fx.svc.Pin(context.Background(), moderator, msg.ID, true))
	pinned, err := fx.svc.ListPinned(context.Background(), member, channel.ID)
	require.NoError(t, err)
	require.Len(t, pinned, 1)
	assert.Equal(t, msg.ID, pinned[0].ID)
}

func TestPinRejectsDirectMessages(t *testing.T) {
	fx := newFixture(config.MessagingConfig{})
	company := uuid.New()
	sender := uuid.New()

	msg, err := fx.svc.SendDirect(context.Background(), company, sender, &model.SendDirectMessageRequest{
		RecipientID: uuid.New(),
		Content:     "hi",
	})
	require.NoError(t, err)

	err = fx.svc.Pin(context.Background(), sender, msg.ID, true)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestAddReactionVisibility(t *testing.T) {
	fx := newFixture(config.MessagingConfig{})
	company := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	msg, err := fx.svc.SendDirect(context.Background(), company, alice, &model.SendDirectMessageRequest{
		RecipientID: bob,
		Content:     "hi",
	})
	require.NoError(t, err)

	err = fx.svc.AddReaction(context.Background(), uuid.New(), msg.ID, "+1")
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, fx.svc.AddReaction(context.Background(), bob, msg.ID, "+1"))
	// Duplicate reaction resolves without error.
	require.NoError(t, fx.svc.AddReaction(context.Background(), bob, msg.ID, "+1"))
	assert.Len(t, fx.messages.reactions, 1)
}

func TestListChannelMessagesPagination(t *testing.T) {
	fx := newFixture(config.MessagingConfig{ChannelPageSize: 50})
	company := uuid.New()
	sender := uuid.New()

	channel := fx.channels.addChannel(&model.Channel{CompanyID: company, Name: "general", Type: model.ChannelTypeTopic})
	fx.channels.addMember(channel.ID, sender, model.ChannelRoleMember)

	for i := 0; i < 3; i++ {
		_, err := fx.svc.SendToChannel(context.Background(), company, sender, channel.ID, &model.SendChannelMessageRequest{Content: "msg"})
		require.NoError(t, err)
	}

	messages, hasMore, err := fx.svc.ListChannelMessages(context.Background(), sender, channel.ID, time.Now().Add(time.Minute), 2)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.True(t, hasMore)

	messages, hasMore, err = fx.svc.ListChannelMessages(context.Background(), sender, channel.ID, time.Now().Add(time.Minute), 3)
	require.NoError(t, err)
	assert.Len(t, messages, 3)
	assert.False(t, hasMore)
}

func TestListConversationsCountsUnread(t *testing.T) {
	fx := newFixture(config.MessagingConfig{})
	company := uuid.New()
	viewer := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	for _, sender := range []uuid.UUID{alice, alice, bob} {
		_, err := fx.svc.SendDirect(context.Background(), company, sender, &model.SendDirectMessageRequest{
			RecipientID: viewer,
			Content:     "hello",
		})
		require.NoError(t, err)
	}

	summaries, totalUnread, err := fx.svc.ListConversations(context.Background(), company, viewer)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Equal(t, 3, totalUnread)
	for _, s := range summaries {
		assert.Equal(t, model.PresenceOffline, s.OtherPresence)
	}
}
