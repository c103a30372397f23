package swap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/model"
	"github.com/workstream/comms-api/internal/repository"
	"github.com/workstream/comms-api/internal/service/notification"
	apperrors "github.com/workstream/comms-api/pkg/errors"
	"github.com/workstream/comms-api/pkg/logger"
	"github.com/workstream/comms-api/pkg/metrics"
)

// Service coordinates shift-exchange negotiation. All state changes go
// through the repository's compare-and-swap, so concurrent responders
// can never both win.
type Service struct {
	repo     repository.SwapRepository
	notifier notification.Service
	// managerApproval routes accepted swaps through pending_manager.
	managerApproval bool
	logger          *logger.Logger
	metrics         *metrics.Metrics
}

func NewService(repo repository.SwapRepository, notifier notification.Service, managerApproval bool, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:            repo,
		notifier:        notifier,
		managerApproval: managerApproval,
		logger:          log,
		metrics:         m,
	}
}

func (s *Service) Request(ctx context.Context, companyID, requesterID uuid.UUID, req *model.RequestSwapRequest) (*model.ScheduleSwapRequest, error) {
	if requesterID == req.TargetID {
		return nil, apperrors.Validation("cannot request a swap with yourself", nil)
	}
	if err := validateShift(req.RequesterShift); err != nil {
		return nil, err
	}
	if err := validateShift(req.TargetShift); err != nil {
		return nil, err
	}

	swap := &model.ScheduleSwapRequest{
		CompanyID:      companyID,
		RequesterID:    requesterID,
		TargetID:       req.TargetID,
		RequesterShift: req.RequesterShift,
		TargetShift:    req.TargetShift,
		Reason:         req.Reason,
		Status:         model.SwapStatusPending,
	}
	if err := s.repo.Create(ctx, swap); err != nil {
		return nil, fmt.Errorf("failed to create swap request: %w", err)
	}

	s.notify(ctx, req.TargetID, "You have a new shift swap request", swap)
	return swap, nil
}

// Respond handles the target's accept/decline of a pending request.
func (s *Service) Respond(ctx context.Context, actorID, requestID uuid.UUID, accept bool) (*model.ScheduleSwapRequest, error) {
	swap, err := s.repo.Get(ctx, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("swap request", err)
	}
	if err != nil {
		return nil, err
	}

	if swap.TargetID != actorID {
		return nil, apperrors.Forbidden("only the swap target can respond", nil)
	}
	if swap.Status != model.SwapStatusPending {
		return nil, apperrors.InvalidStateTransition(
			fmt.Sprintf("swap request is %s, not pending", swap.Status))
	}

	var to model.SwapStatus
	switch {
	case !accept:
		to = model.SwapStatusDeclined
	case s.managerApproval:
		to = model.SwapStatusPendingManager
	default:
		to = model.SwapStatusAccepted
	}

	return s.transition(ctx, swap, model.SwapStatusPending, to, swap.RequesterID)
}

// Resolve handles the manager's approve/reject of a request waiting on
// approval.
func (s *Service) Resolve(ctx context.Context, managerID uuid.UUID, isManager bool, requestID uuid.UUID, approve bool) (*model.ScheduleSwapRequest, error) {
	if !isManager {
		return nil, apperrors.Forbidden("only a manager can resolve this request", nil)
	}

	swap, err := s.repo.Get(ctx, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("swap request", err)
	}
	if err != nil {
		return nil, err
	}
	if swap.Status != model.SwapStatusPendingManager {
		return nil, apperrors.InvalidStateTransition(
			fmt.Sprintf("swap request is %s, not pending_manager", swap.Status))
	}

	to := model.SwapStatusAccepted
	if !approve {
		to = model.SwapStatusDeclined
	}

	resolved, err := s.transition(ctx, swap, model.SwapStatusPendingManager, to, swap.RequesterID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, swap.TargetID, fmt.Sprintf("A manager %s the shift swap", pastTense(to)), resolved)
	return resolved, nil
}

// transition performs the CAS and notifies the counterpart. A CAS miss
// means someone else resolved the request first; the caller gets
// InvalidStateTransitionError and must not retry.
func (s *Service) transition(ctx context.Context, swap *model.ScheduleSwapRequest, from, to model.SwapStatus, notifyUser uuid.UUID) (*model.ScheduleSwapRequest, error) {
	var resolvedAt *time.Time
	if to.Terminal() {
		now := time.Now()
		resolvedAt = &now
	}

	ok, err := s.repo.TransitionStatus(ctx, swap.ID, from, to, resolvedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to transition swap request: %w", err)
	}
	if !ok {
		return nil, apperrors.InvalidStateTransition("swap request was already resolved")
	}

	if s.metrics != nil {
		s.metrics.SwapTransitions.WithLabelValues(string(to)).Inc()
	}

	swap.Status = to
	swap.ResolvedAt = resolvedAt

	message := fmt.Sprintf("Your shift swap request was %s", pastTense(to))
	if to == model.SwapStatusPendingManager {
		message = "Your shift swap request is awaiting manager approval"
	}
	s.notify(ctx, notifyUser, message, swap)
	return swap, nil
}

func (s *Service) MyRequests(ctx context.Context, userID uuid.UUID) (*model.SwapRequestLists, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) CountPending(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountPendingForUser(ctx, userID)
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, message string, swap *model.ScheduleSwapRequest) {
	err := s.notifier.Enqueue(ctx, userID, model.NotificationTypeScheduleSwap, message, model.JSONMap{
		"swap_request_id": swap.ID.String(),
		"status":          string(swap.Status),
	})
	if err != nil {
		s.logger.Error(err, "failed to enqueue swap notification",
			"swap_request_id", swap.ID.String(), "recipient_id", userID.String())
	}
}

func validateShift(shift model.Shift) error {
	if _, err := time.Parse("2006-01-02", shift.Date); err != nil {
		return apperrors.Validation("invalid shift date", err)
	}
	start, err := time.Parse("15:04", shift.Start)
	if err != nil {
		return apperrors.Validation("invalid shift start time", err)
	}
	end, err := time.Parse("15:04", shift.End)
	if err != nil {
		return apperrors.Validation("invalid shift end time", err)
	}
	if !end.After(start) {
		return apperrors.Validation("shift end must be after start", nil)
	}
	return nil
}

func pastTense(status model.SwapStatus) string {
	switch status {
	case model.SwapStatusAccepted:
		return "accepted"
	case model.SwapStatusDeclined:
		return "declined"
	default:
		return string(status)
	}
}
