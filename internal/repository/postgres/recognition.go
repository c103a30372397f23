package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/model"
)

func (r *recognitionRepository) Create(ctx context.Context, rec *model.Recognition) error {
	query := `
		INSERT INTO recognitions (
			id, company_id, sender_id, recipient_id, recognition_type,
			message, badge_key, badge_name, badge_icon, points,
			is_public, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.CompanyID,
		rec.SenderID,
		rec.RecipientID,
		rec.Type,
		rec.Message,
		rec.BadgeKey,
		rec.BadgeName,
		rec.BadgeIcon,
		rec.Points,
		rec.IsPublic,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recognition: %w", err)
	}
	return nil
}

func (r *recognitionRepository) ListPublicFeed(ctx context.Context, companyID uuid.UUID, limit int) ([]*model.Recognition, error) {
	query := `
		SELECT id, company_id, sender_id, recipient_id, recognition_type,
			   message, badge_key, badge_name, badge_icon, points,
			   is_public, created_at
		FROM recognitions
		WHERE company_id = $1 AND is_public = true
		ORDER BY created_at DESC
		LIMIT $2
	`
	var recognitions []*model.Recognition
	if err := r.db.SelectContext(ctx, &recognitions, query, companyID, limit); err != nil {
		return nil, fmt.Errorf("failed to list recognition feed: %w", err)
	}
	return recognitions, nil
}

// LifetimePoints sums the ledger instead of reading a counter, so
// concurrent awards can never lose an increment.
func (r *recognitionRepository) LifetimePoints(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(SUM(points), 0) FROM recognitions WHERE recipient_id = $1`

	var points int
	if err := r.db.GetContext(ctx, &points, query, userID); err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return points, nil
}

func (r *recognitionRepository) StatsForUser(ctx context.Context, userID uuid.UUID) (*model.RecognitionStats, error) {
	stats := &model.RecognitionStats{}

	query := `
		SELECT
			COALESCE(SUM(points) FILTER (WHERE recipient_id = $1), 0) AS lifetime_points,
			COUNT(*) FILTER (WHERE recipient_id = $1) AS total_received,
			COUNT(*) FILTER (WHERE sender_id = $1) AS total_sent
		FROM recognitions
		WHERE recipient_id = $1 OR sender_id = $1
	`
	row := r.db.QueryRowxContext(ctx, query, userID)
	if err := row.Scan(&stats.LifetimePoints, &stats.TotalReceived, &stats.TotalSent); err != nil {
		return nil, fmt.Errorf("failed to compute recognition stats: %w", err)
	}

	breakdownQuery := `
		SELECT badge_key, badge_name, COUNT(*) AS count
		FROM recognitions
		WHERE recipient_id = $1
		GROUP BY badge_key, badge_name
		ORDER BY count DESC
	`
	if err := r.db.SelectContext(ctx, &stats.BadgeBreakdown, breakdownQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to compute badge breakdown: %w", err)
	}
	return stats, nil
}
