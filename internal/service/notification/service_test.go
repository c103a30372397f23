package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstream/comms-api/internal/model"
	"github.com/workstream/comms-api/pkg/logger"
	"github.com/workstream/comms-api/pkg/messaging"
)

type fakeNotificationRepo struct {
	notifications []*model.Notification
	markedBy      uuid.UUID
	markedIDs     []uuid.UUID
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	n.ID = uuid.New()
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotificationRepo) List(_ context.Context, userID uuid.UUID, unreadOnly bool, _ int) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range f.notifications {
		if n.RecipientID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range f.notifications {
		if n.RecipientID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	f.markedBy = userID
	f.markedIDs = ids
	for _, n := range f.notifications {
		for _, id := range ids {
			if n.ID == id && n.RecipientID == userID {
				n.Read = true
			}
		}
	}
	return nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
	err    error
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	if f.err != nil {
		return f.err
	}
	e.ID = uuid.New()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(context.Context, int) ([]*model.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeOutboxRepo) UpdateStatus(context.Context, uuid.UUID, model.OutboxStatus, *string) error {
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newTestService(repo *fakeNotificationRepo, outbox *fakeOutboxRepo) Service {
	return NewService(repo, outbox, logger.NewLogger(&logger.Config{Level: logger.ErrorLevel}), nil)
}

func TestEnqueueWritesFeedRowAndOutboxEvent(t *testing.T) {
	repo := &fakeNotificationRepo{}
	outbox := &fakeOutboxRepo{}
	svc := newTestService(repo, outbox)

	recipient := uuid.New()
	err := svc.Enqueue(context.Background(), recipient, model.NotificationTypeRecognition, "You received a badge", model.JSONMap{"badge": "team_player"})
	require.NoError(t, err)

	require.Len(t, repo.notifications, 1)
	assert.Equal(t, recipient, repo.notifications[0].RecipientID)
	assert.False(t, repo.notifications[0].Read)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, messaging.UserTopic(recipient.String()), outbox.events[0].Topic)
	assert.Equal(t, string(model.NotificationTypeRecognition), outbox.events[0].EventType)
}

func TestEnqueueSurvivesOutboxFailure(t *testing.T) {
	repo := &fakeNotificationRepo{}
	outbox := &fakeOutboxRepo{err: assert.AnError}
	svc := newTestService(repo, outbox)

	err := svc.Enqueue(context.Background(), uuid.New(), model.NotificationTypeMessage, "New message", nil)
	require.NoError(t, err)
	assert.Len(t, repo.notifications, 1)
	assert.Empty(t, outbox.events)
}

func TestListReturnsUnreadCount(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newTestService(repo, &fakeOutboxRepo{})
	user := uuid.New()

	require.NoError(t, svc.Enqueue(context.Background(), user, model.NotificationTypeMessage, "one", nil))
	require.NoError(t, svc.Enqueue(context.Background(), user, model.NotificationTypeMessage, "two", nil))
	require.NoError(t, svc.Enqueue(context.Background(), uuid.New(), model.NotificationTypeMessage, "other user", nil))

	feed, err := svc.List(context.Background(), user, false)
	require.NoError(t, err)
	assert.Len(t, feed.Notifications, 2)
	assert.Equal(t, 2, feed.UnreadCount)
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newTestService(repo, &fakeOutboxRepo{})
	owner := uuid.New()
	other := uuid.New()

	require.NoError(t, svc.Enqueue(context.Background(), owner, model.NotificationTypeSystem, "hi", nil))
	target := repo.notifications[0].ID

	require.NoError(t, svc.MarkRead(context.Background(), other, []uuid.UUID{target}))
	assert.False(t, repo.notifications[0].Read)

	require.NoError(t, svc.MarkRead(context.Background(), owner, []uuid.UUID{target}))
	assert.True(t, repo.notifications[0].Read)

	count, err := svc.CountUnread(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}
