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

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) error {
	query := `
		INSERT INTO announcements (
			id, company_id, author_id, title, content, priority,
			audience, department, requires_acknowledgment, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	a.ID = uuid.New()
	a.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.CompanyID,
		a.AuthorID,
		a.Title,
		a.Content,
		a.Priority,
		a.Audience,
		a.Department,
		a.RequiresAcknowledgment,
		a.ExpiresAt,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

func (r *announcementRepository) Get(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	query := `
		SELECT id, company_id, author_id, title, content, priority,
			   audience, department, requires_acknowledgment, expires_at,
			   created_at, false AS acknowledged
		FROM announcements
		WHERE id = $1
	`
	var a model.Announcement
	err := r.db.GetContext(ctx, &a, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &a, nil
}

func (r *announcementRepository) List(ctx context.Context, companyID, viewerID uuid.UUID, includeExpired bool) ([]*model.Announcement, error) {
	query := `
		SELECT a.id, a.company_id, a.author_id, a.title, a.content, a.priority,
			   a.audience, a.department, a.requires_acknowledgment, a.expires_at,
			   a.created_at,
			   (ack.user_id IS NOT NULL) AS acknowledged
		FROM announcements a
		LEFT JOIN announcement_acks ack
			ON ack.announcement_id = a.id AND ack.user_id = $2
		WHERE a.company_id = $1
	`
	if !includeExpired {
		query += " AND (a.expires_at IS NULL OR a.expires_at > now())"
	}
	query += " ORDER BY a.created_at DESC"

	var announcements []*model.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, companyID, viewerID); err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

func (r *announcementRepository) Acknowledge(ctx context.Context, announcementID, userID uuid.UUID) error {
	query := `
		INSERT INTO announcement_acks (announcement_id, user_id, acked_at)
		VALUES ($1, $2, now())
		ON CONFLICT (announcement_id, user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, announcementID, userID); err != nil {
		return fmt.Errorf("failed to acknowledge announcement: %w", err)
	}
	return nil
}
