package announcement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/email"
	"github.com/workstream/comms-api/internal/model"
	"github.com/workstream/comms-api/internal/repository"
	"github.com/workstream/comms-api/internal/service/notification"
	apperrors "github.com/workstream/comms-api/pkg/errors"
	"github.com/workstream/comms-api/pkg/logger"
)

type Service struct {
	repo      repository.AnnouncementRepository
	directory repository.EmployeeDirectory
	notifier  notification.Service
	email     email.Service
	logger    *logger.Logger
}

func NewService(
	repo repository.AnnouncementRepository,
	directory repository.EmployeeDirectory,
	notifier notification.Service,
	emailSvc email.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		email:     emailSvc,
		logger:    log,
	}
}

// Post publishes an announcement and fans out a notification to every
// employee in scope. Urgent announcements additionally go out by email.
func (s *Service) Post(ctx context.Context, companyID, authorID uuid.UUID, req *model.PostAnnouncementRequest) (*model.Announcement, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.Validation("title and content are required", nil)
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.Valid() {
		return nil, apperrors.Validation("invalid priority", nil)
	}
	audience := req.Audience
	if audience == "" {
		audience = model.AudienceCompany
	}
	if audience == model.AudienceDepartment && req.Department == nil {
		return nil, apperrors.Validation("department audience requires a department", nil)
	}

	a := &model.Announcement{
		CompanyID:              companyID,
		AuthorID:               authorID,
		Title:                  req.Title,
		Content:                req.Content,
		Priority:               priority,
		Audience:               audience,
		Department:             req.Department,
		RequiresAcknowledgment: req.RequiresAcknowledgment,
		ExpiresAt:              req.ExpiresAt,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	s.fanOut(ctx, a)
	return a, nil
}

func (s *Service) fanOut(ctx context.Context, a *model.Announcement) {
	var (
		employees []*model.Employee
		err       error
	)
	if a.Audience == model.AudienceDepartment {
		employees, err = s.directory.ListByDepartment(ctx, a.CompanyID, *a.Department)
	} else {
		employees, err = s.directory.ListByCompany(ctx, a.CompanyID)
	}
	if err != nil {
		s.logger.Error(err, "failed to resolve announcement audience", "announcement_id", a.ID.String())
		return
	}

	data := model.JSONMap{
		"announcement_id":         a.ID.String(),
		"priority":                string(a.Priority),
		"requires_acknowledgment": a.RequiresAcknowledgment,
	}
	for _, emp := range employees {
		if emp.ID == a.AuthorID {
			continue
		}
		s.notifier.Enqueue(ctx, emp.ID, model.NotificationTypeAnnouncement, a.Title, data)

		if a.Priority == model.PriorityUrgent && emp.Email != "" {
			if err := s.email.Send(ctx, emp.Email, "[Urgent] "+a.Title, a.Content); err != nil {
				s.logger.Error(err, "failed to email urgent announcement", "employee_id", emp.ID.String())
			}
		}
	}
}

func (s *Service) List(ctx context.Context, companyID, viewerID uuid.UUID, includeExpired bool) ([]*model.Announcement, error) {
	announcements, err := s.repo.List(ctx, companyID, viewerID, includeExpired)
	if err != nil {
		return nil, err
	}
	if announcements == nil {
		announcements = []*model.Announcement{}
	}
	return announcements, nil
}

// Acknowledge records the viewer's ack; repeated acks are a no-op.
func (s *Service) Acknowledge(ctx context.Context, announcementID, userID uuid.UUID) error {
	a, err := s.repo.Get(ctx, announcementID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("announcement", err)
	}
	if err != nil {
		return err
	}
	if !a.RequiresAcknowledgment {
		return apperrors.Validation("announcement does not require acknowledgment", nil)
	}
	return s.repo.Acknowledge(ctx, announcementID, userID)
}
