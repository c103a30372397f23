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

const swapColumns = `
	id, company_id, requester_id, target_id, requester_shift,
	target_shift, reason, status, created_at, resolved_at
`

func (r *swapRepository) Create(ctx context.Context, req *model.ScheduleSwapRequest) error {
	query := `
		INSERT INTO swap_requests (
			id, company_id, requester_id, target_id, requester_shift,
			target_shift, reason, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	req.ID = uuid.New()
	req.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.CompanyID,
		req.RequesterID,
		req.TargetID,
		req.RequesterShift,
		req.TargetShift,
		req.Reason,
		req.Status,
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create swap request: %w", err)
	}
	return nil
}

func (r *swapRepository) Get(ctx context.Context, id uuid.UUID) (*model.ScheduleSwapRequest, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE id = $1`

	var req model.ScheduleSwapRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get swap request: %w", err)
	}
	return &req, nil
}

// TransitionStatus is the compare-and-swap at the heart of the
// negotiator: the WHERE clause pins the expected current state, so of
// two concurrent transitions exactly one sees RowsAffected == 1.
func (r *swapRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.SwapStatus, resolvedAt *time.Time) (bool, error) {
	query := `
		UPDATE swap_requests
		SET status = $3, resolved_at = $4
		WHERE id = $1 AND status = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, from, to, resolvedAt)
	if err != nil {
		return false, fmt.Errorf("failed to transition swap request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *swapRepository) ListForUser(ctx context.Context, userID uuid.UUID) (*model.SwapRequestLists, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM swap_requests
		WHERE requester_id = $1 OR target_id = $1
		ORDER BY created_at DESC
	`
	var all []*model.ScheduleSwapRequest
	if err := r.db.SelectContext(ctx, &all, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list swap requests: %w", err)
	}

	lists := &model.SwapRequestLists{
		Incoming: []*model.ScheduleSwapRequest{},
		Outgoing: []*model.ScheduleSwapRequest{},
	}
	for _, req := range all {
		if req.TargetID == userID {
			lists.Incoming = append(lists.Incoming, req)
		} else {
			lists.Outgoing = append(lists.Outgoing, req)
		}
	}
	return lists, nil
}

func (r *swapRepository) CountPendingForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM swap_requests
		WHERE (requester_id = $1 OR target_id = $1)
		  AND status IN ('pending', 'pending_manager')
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count pending swap requests: %w", err)
	}
	return count, nil
}
