package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/model"
)

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (
			id, company_id, sender_id, recipient_id, channel_id,
			message_type, content, subject, priority, status,
			is_pinned, attachments, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		msg.CompanyID,
		msg.SenderID,
		msg.RecipientID,
		msg.ChannelID,
		msg.Type,
		msg.Content,
		msg.Subject,
		msg.Priority,
		msg.Status,
		msg.IsPinned,
		msg.Attachments,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

const messageColumns = `
	id, company_id, sender_id, recipient_id, channel_id,
	message_type, content, subject, priority, status,
	is_pinned, attachments, created_at, read_at
`

func (r *messageRepository) Get(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	var msg model.Message
	err := r.db.GetContext(ctx, &msg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

func (r *messageRepository) ListConversation(ctx context.Context, companyID, userA, userB uuid.UUID, limit int) ([]*model.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE company_id = $1
		  AND message_type = 'direct'
		  AND ((sender_id = $2 AND recipient_id = $3) OR (sender_id = $3 AND recipient_id = $2))
		ORDER BY created_at DESC
		LIMIT $4
	`
	var messages []*model.Message
	err := r.db.SelectContext(ctx, &messages, query, companyID, userA, userB, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) ListConversationSummaries(ctx context.Context, companyID, userID uuid.UUID) ([]*model.ConversationSummary, error) {
	query := `
		SELECT
			CASE WHEN sender_id = $2 THEN recipient_id ELSE sender_id END AS other_user_id,
			COUNT(*) FILTER (WHERE recipient_id = $2 AND status != 'read') AS unread_count,
			MAX(created_at) AS last_activity
		FROM messages
		WHERE company_id = $1
		  AND message_type = 'direct'
		  AND (sender_id = $2 OR recipient_id = $2)
		GROUP BY 1
		ORDER BY last_activity DESC
	`
	var summaries []*model.ConversationSummary
	if err := r.db.SelectContext(ctx, &summaries, query, companyID, userID); err != nil {
		return nil, fmt.Errorf("failed to list conversation summaries: %w", err)
	}

	lastQuery := `
		SELECT DISTINCT ON (other_user_id) *
		FROM (
			SELECT ` + messageColumns + `,
				CASE WHEN sender_id = $2 THEN recipient_id ELSE sender_id END AS other_user_id
			FROM messages
			WHERE company_id = $1
			  AND message_type = 'direct'
			  AND (sender_id = $2 OR recipient_id = $2)
		) m
		ORDER BY other_user_id, created_at DESC
	`
	type lastRow struct {
		model.Message
		OtherUserID uuid.UUID `db:"other_user_id"`
	}
	var lasts []lastRow
	if err := r.db.SelectContext(ctx, &lasts, lastQuery, companyID, userID); err != nil {
		return nil, fmt.Errorf("failed to load last messages: %w", err)
	}

	byOther := make(map[uuid.UUID]*model.Message, len(lasts))
	for i := range lasts {
		msg := lasts[i].Message
		byOther[lasts[i].OtherUserID] = &msg
	}
	for _, s := range summaries {
		s.ConversationID = model.ConversationID(userID, s.OtherUserID)
		s.LastMessage = byOther[s.OtherUserID]
	}
	return summaries, nil
}

func (r *messageRepository) CountUnreadDirect(ctx context.Context, companyID, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE company_id = $1
		  AND message_type = 'direct'
		  AND recipient_id = $2
		  AND status != 'read'
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, companyID, userID); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

func (r *messageRepository) CountUnreadBetween(ctx context.Context, companyID, viewerID, otherID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE company_id = $1
		  AND message_type = 'direct'
		  AND recipient_id = $2
		  AND sender_id = $3
		  AND status != 'read'
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, companyID, viewerID, otherID); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

func (r *messageRepository) ListChannelMessages(ctx context.Context, channelID uuid.UUID, before time.Time, limit int) ([]*model.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE channel_id = $1
		  AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	var messages []*model.Message
	err := r.db.SelectContext(ctx, &messages, query, channelID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) ListPinnedMessages(ctx context.Context, channelID uuid.UUID) ([]*model.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE channel_id = $1
		  AND is_pinned = true
		ORDER BY created_at DESC
	`
	var messages []*model.Message
	err := r.db.SelectContext(ctx, &messages, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pinned messages: %w", err)
	}
	return messages, nil
}

// MarkDirectRead is idempotent: the read_at IS NULL guard leaves
// already-read rows untouched and keeps the transition forward-only.
func (r *messageRepository) MarkDirectRead(ctx context.Context, messageID, readerID uuid.UUID) error {
	query := `
		UPDATE messages
		SET status = 'read', read_at = now()
		WHERE id = $1
		  AND recipient_id = $2
		  AND read_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, messageID, readerID); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

func (r *messageRepository) MarkDelivered(ctx context.Context, recipientID, senderID uuid.UUID) error {
	query := `
		UPDATE messages
		SET status = 'delivered'
		WHERE recipient_id = $1
		  AND sender_id = $2
		  AND status = 'sent'
	`
	if _, err := r.db.ExecContext(ctx, query, recipientID, senderID); err != nil {
		return fmt.Errorf("failed to mark messages delivered: %w", err)
	}
	return nil
}

func (r *messageRepository) MarkChannelRead(ctx context.Context, messageID, readerID uuid.UUID) error {
	query := `
		INSERT INTO message_reads (message_id, user_id, read_at)
		VALUES ($1, $2, now())
		ON CONFLICT (message_id, user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, messageID, readerID); err != nil {
		return fmt.Errorf("failed to record read receipt: %w", err)
	}
	return nil
}

func (r *messageRepository) AddReaction(ctx context.Context, reaction *model.Reaction) error {
	query := `
		INSERT INTO reactions (message_id, user_id, emoji, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (message_id, user_id, emoji) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, reaction.MessageID, reaction.UserID, reaction.Emoji); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

func (r *messageRepository) ListReactions(ctx context.Context, messageID uuid.UUID) ([]model.Reaction, error) {
	query := `
		SELECT message_id, user_id, emoji, created_at
		FROM reactions
		WHERE message_id = $1
		ORDER BY created_at ASC
	`
	var reactions []model.Reaction
	if err := r.db.SelectContext(ctx, &reactions, query, messageID); err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	return reactions, nil
}

func (r *messageRepository) SetPinned(ctx context.Context, messageID uuid.UUID, pinned bool) error {
	query := `UPDATE messages SET is_pinned = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, messageID, pinned)
	if err != nil {
		return fmt.Errorf("failed to set pinned: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *messageRepository) Search(ctx context.Context, companyID, viewerID uuid.UUID, q *model.SearchQuery) ([]*model.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		WHERE m.company_id = $1
		  AND m.content ILIKE '%' || $2 || '%'
		  AND (
			(m.recipient_id IS NOT NULL AND (m.sender_id = $3 OR m.recipient_id = $3))
			OR (m.channel_id IS NOT NULL AND EXISTS (
				SELECT 1 FROM channels c
				LEFT JOIN channel_members cm ON cm.channel_id = c.id AND cm.user_id = $3
				WHERE c.id = m.channel_id AND (NOT c.is_private OR cm.user_id IS NOT NULL)
			))
		  )
	`
	args := []interface{}{companyID, q.Term, viewerID}
	argCount := 4

	if q.Type != "" {
		query += fmt.Sprintf(" AND m.message_type = $%d", argCount)
		args = append(args, q.Type)
		argCount++
	}
	if q.ChannelID != nil {
		query += fmt.Sprintf(" AND m.channel_id = $%d", argCount)
		args = append(args, *q.ChannelID)
		argCount++
	}
	if q.SenderID != nil {
		query += fmt.Sprintf(" AND m.sender_id = $%d", argCount)
		args = append(args, *q.SenderID)
		argCount++
	}

	query += fmt.Sprintf(" ORDER BY m.created_at DESC LIMIT $%d", argCount)
	args = append(args, q.Limit)

	var messages []*model.Message
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	return messages, nil
}
