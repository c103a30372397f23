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

const channelColumns = `
	c.id, c.company_id, c.name, c.channel_type, c.description,
	c.is_private, c.created_by, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM channel_members cm2 WHERE cm2.channel_id = c.id) AS member_count
`

func (r *channelRepository) Create(ctx context.Context, channel *model.Channel, members []*model.ChannelMember) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	channel.ID = uuid.New()
	channel.CreatedAt = time.Now()
	channel.UpdatedAt = channel.CreatedAt

	query := `
		INSERT INTO channels (
			id, company_id, name, channel_type, description,
			is_private, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, query,
		channel.ID,
		channel.CompanyID,
		channel.Name,
		channel.Type,
		channel.Description,
		channel.IsPrivate,
		channel.CreatedBy,
		channel.CreatedAt,
		channel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}

	memberQuery := `
		INSERT INTO channel_members (channel_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id, user_id) DO NOTHING
	`
	for _, m := range members {
		m.ChannelID = channel.ID
		m.JoinedAt = time.Now()
		if _, err := tx.ExecContext(ctx, memberQuery, m.ChannelID, m.UserID, m.Role, m.JoinedAt); err != nil {
			return fmt.Errorf("failed to add channel member: %w", err)
		}
	}
	channel.MemberCount = len(members)

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit channel creation: %w", err)
	}
	return nil
}

func (r *channelRepository) Get(ctx context.Context, id uuid.UUID) (*model.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels c WHERE c.id = $1`

	var channel model.Channel
	err := r.db.GetContext(ctx, &channel, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return &channel, nil
}

func (r *channelRepository) List(ctx context.Context, companyID, userID uuid.UUID) ([]*model.Channel, error) {
	query := `
		SELECT ` + channelColumns + `
		FROM channels c
		WHERE c.company_id = $1
		  AND (
			NOT c.is_private
			OR EXISTS (SELECT 1 FROM channel_members cm WHERE cm.channel_id = c.id AND cm.user_id = $2)
		  )
		ORDER BY c.name ASC
	`
	var channels []*model.Channel
	if err := r.db.SelectContext(ctx, &channels, query, companyID, userID); err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

func (r *channelRepository) NameExists(ctx context.Context, companyID uuid.UUID, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM channels
			WHERE company_id = $1 AND lower(name) = lower($2)
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, companyID, name); err != nil {
		return false, fmt.Errorf("failed to check channel name: %w", err)
	}
	return exists, nil
}

func (r *channelRepository) AddMember(ctx context.Context, member *model.ChannelMember) error {
	query := `
		INSERT INTO channel_members (channel_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (channel_id, user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, member.ChannelID, member.UserID, member.Role); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *channelRepository) RemoveMember(ctx context.Context, channelID, userID uuid.UUID) error {
	query := `DELETE FROM channel_members WHERE channel_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, channelID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

func (r *channelRepository) IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM channel_members WHERE channel_id = $1 AND user_id = $2
		)
	`
	var isMember bool
	if err := r.db.GetContext(ctx, &isMember, query, channelID, userID); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return isMember, nil
}

func (r *channelRepository) GetMemberRole(ctx context.Context, channelID, userID uuid.UUID) (model.ChannelRole, error) {
	query := `SELECT role FROM channel_members WHERE channel_id = $1 AND user_id = $2`

	var role model.ChannelRole
	err := r.db.GetContext(ctx, &role, query, channelID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sql.ErrNoRows
	}
	if err != nil {
		return "", fmt.Errorf("failed to get member role: %w", err)
	}
	return role, nil
}

func (r *channelRepository) ListMemberIDs(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM channel_members WHERE channel_id = $1`

	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, channelID); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return ids, nil
}
