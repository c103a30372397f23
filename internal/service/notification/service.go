package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/model"
	"github.com/workstream/comms-api/internal/repository"
	"github.com/workstream/comms-api/pkg/logger"
	"github.com/workstream/comms-api/pkg/messaging"
	"github.com/workstream/comms-api/pkg/metrics"
)

const defaultListLimit = 100

// Service is the notification dispatcher: every other component fans
// out through Enqueue.
type Service interface {
	Enqueue(ctx context.Context, recipientID uuid.UUID, typ model.NotificationType, message string, data model.JSONMap) error
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) (*model.NotificationFeed, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

type service struct {
	repo    repository.NotificationRepository
	outbox  repository.OutboxRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo repository.NotificationRepository, outbox repository.OutboxRepository, log *logger.Logger, m *metrics.Metrics) Service {
	return &service{
		repo:    repo,
		outbox:  outbox,
		logger:  log,
		metrics: m,
	}
}

// Enqueue appends the feed row and stages a broker event through the
// outbox. The feed row is the source of truth; a failed outbox write
// only degrades realtime push, so it is logged rather than bubbled up.
func (s *service) Enqueue(ctx context.Context, recipientID uuid.UUID, typ model.NotificationType, message string, data model.JSONMap) error {
	n := &model.Notification{
		RecipientID: recipientID,
		Type:        typ,
		Message:     message,
		Data:        data,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	if s.metrics != nil {
		s.metrics.NotificationsEnqueued.WithLabelValues(string(typ)).Inc()
	}

	payload, err := json.Marshal(messaging.Event{Type: string(typ), Payload: n})
	if err != nil {
		s.logger.Error(err, "failed to marshal notification event")
		return nil
	}
	event := &model.OutboxEvent{
		Topic:     messaging.UserTopic(recipientID.String()),
		EventType: string(typ),
		Payload:   payload,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to stage outbox event", "recipient_id", recipientID.String())
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) (*model.NotificationFeed, error) {
	notifications, err := s.repo.List(ctx, userID, unreadOnly, defaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*model.Notification{}
	}
	return &model.NotificationFeed{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, ids)
}

func (s *service) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
