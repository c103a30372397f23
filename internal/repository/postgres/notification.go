package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/workstream/comms-api/internal/model"
)

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient_id, notification_type, message, data, read, created_at
		) VALUES ($1, $2, $3, $4, $5, false, $6)
	`
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	n.Read = false

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.RecipientID,
		n.Type,
		n.Message,
		n.Data,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error) {
	query := `
		SELECT id, recipient_id, notification_type, message, data, read, created_at
		FROM notifications
		WHERE recipient_id = $1
	`
	args := []interface{}{recipientID}
	if unreadOnly {
		query += " AND read = false"
	}
	query += " ORDER BY created_at DESC LIMIT $2"
	args = append(args, limit)

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = false`

	var count int
	if err := r.db.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead scopes the update to the recipient, so ids owned by other
// users are skipped without surfacing their existence.
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE notifications
		SET read = true
		WHERE recipient_id = $1 AND id = ANY($2)
	`
	if _, err := r.db.ExecContext(ctx, query, recipientID, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
