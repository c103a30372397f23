package recognition

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/model"
	"github.com/workstream/comms-api/internal/repository"
	"github.com/workstream/comms-api/internal/service/notification"
	apperrors "github.com/workstream/comms-api/pkg/errors"
	"github.com/workstream/comms-api/pkg/metrics"
)

// defaultCatalog is the authoritative badge catalog. Point values are
// snapshotted onto each award, so editing this table never rewrites
// history.
var defaultCatalog = map[string]model.Badge{
	"team_player":    {Key: "team_player", Name: "Team Player", Icon: "people", PointValue: 50},
	"going_above":    {Key: "going_above", Name: "Above & Beyond", Icon: "rocket", PointValue: 75},
	"customer_hero":  {Key: "customer_hero", Name: "Customer Hero", Icon: "star", PointValue: 60},
	"safety_first":   {Key: "safety_first", Name: "Safety First", Icon: "shield", PointValue: 40},
	"mentor":         {Key: "mentor", Name: "Mentor", Icon: "school", PointValue: 65},
	"innovation":     {Key: "innovation", Name: "Innovator", Icon: "bulb", PointValue: 70},
	"perfect_attend": {Key: "perfect_attend", Name: "Perfect Attendance", Icon: "calendar", PointValue: 30},
}

type Service struct {
	repo     repository.RecognitionRepository
	messages repository.MessageRepository
	notifier notification.Service
	catalog  map[string]model.Badge
	feedCap  int
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.RecognitionRepository,
	messages repository.MessageRepository,
	notifier notification.Service,
	feedCap int,
	m *metrics.Metrics,
) *Service {
	if feedCap <= 0 {
		feedCap = 50
	}
	return &Service{
		repo:     repo,
		messages: messages,
		notifier: notifier,
		catalog:  defaultCatalog,
		feedCap:  feedCap,
		metrics:  m,
	}
}

// Badges returns the catalog ordered by key for a stable response.
func (s *Service) Badges() []model.Badge {
	badges := make([]model.Badge, 0, len(s.catalog))
	for _, b := range s.catalog {
		badges = append(badges, b)
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].Key < badges[j].Key })
	return badges
}

// Award appends to the ledger, emits the recognition message into the
// recipient's feed, and notifies them. Points come from the catalog at
// this instant.
func (s *Service) Award(ctx context.Context, companyID, senderID uuid.UUID, req *model.SendRecognitionRequest) (*model.Recognition, error) {
	if senderID == req.RecipientID {
		return nil, apperrors.SelfRecognition()
	}
	badge, ok := s.catalog[req.Type]
	if !ok {
		return nil, apperrors.UnknownBadge(req.Type)
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	rec := &model.Recognition{
		CompanyID:   companyID,
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Type:        req.Type,
		Message:     req.Message,
		BadgeKey:    badge.Key,
		BadgeName:   badge.Name,
		BadgeIcon:   badge.Icon,
		Points:      badge.PointValue,
		IsPublic:    isPublic,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record recognition: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecognitionsAwarded.Inc()
	}

	recipientID := req.RecipientID
	subject := badge.Name
	msg := &model.Message{
		CompanyID:   companyID,
		SenderID:    senderID,
		RecipientID: &recipientID,
		Type:        model.MessageTypeRecognition,
		Content:     req.Message,
		Subject:     &subject,
		Priority:    model.PriorityNormal,
		Status:      model.MessageStatusSent,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to emit recognition message: %w", err)
	}

	if err := s.notifier.Enqueue(ctx, recipientID, model.NotificationTypeRecognition,
		fmt.Sprintf("You received the %s badge (%d points)", badge.Name, badge.PointValue),
		model.JSONMap{
			"recognition_id": rec.ID.String(),
			"badge_key":      badge.Key,
			"points":         badge.PointValue,
			"sender_id":      senderID.String(),
		}); err != nil {
		return nil, fmt.Errorf("failed to notify recipient: %w", err)
	}
	return rec, nil
}

// Feed returns recent public recognitions. The server-side cap applies
// regardless of what the client asked for.
func (s *Service) Feed(ctx context.Context, companyID uuid.UUID, limit int) ([]*model.Recognition, error) {
	if limit <= 0 || limit > s.feedCap {
		limit = s.feedCap
	}
	feed, err := s.repo.ListPublicFeed(ctx, companyID, limit)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		feed = []*model.Recognition{}
	}
	return feed, nil
}

func (s *Service) MyStats(ctx context.Context, userID uuid.UUID) (*model.RecognitionStats, error) {
	stats, err := s.repo.StatsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats.BadgeBreakdown == nil {
		stats.BadgeBreakdown = []model.BadgeCount{}
	}
	return stats, nil
}

func (s *Service) LifetimePoints(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.LifetimePoints(ctx, userID)
}
