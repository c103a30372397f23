package announcement

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstream/comms-api/internal/model"
	apperrors "github.com/workstream/comms-api/pkg/errors"
	"github.com/workstream/comms-api/pkg/logger"
)

type ackKey struct {
	announcementID uuid.UUID
	userID         uuid.UUID
}

type fakeAnnouncementRepo struct {
	announcements map[uuid.UUID]*model.Announcement
	acks          map[ackKey]bool
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{
		announcements: make(map[uuid.UUID]*model.Announcement),
		acks:          make(map[ackKey]bool),
	}
}

func (f *fakeAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	f.announcements[a.ID] = a
	return nil
}

func (f *fakeAnnouncementRepo) Get(_ context.Context, id uuid.UUID) (*model.Announcement, error) {
	a, ok := f.announcements[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (f *fakeAnnouncementRepo) List(_ context.Context, companyID, viewerID uuid.UUID, includeExpired bool) ([]*model.Announcement, error) {
	now := time.Now()
	var out []*model.Announcement
	for _, a := range f.announcements {
		if a.CompanyID != companyID {
			continue
		}
		if !includeExpired && a.ExpiresAt != nil && a.ExpiresAt.Before(now) {
			continue
		}
		copied := *a
		copied.AcknowledgedByRequester = f.acks[ackKey{a.ID, viewerID}]
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeAnnouncementRepo) Acknowledge(_ context.Context, announcementID, userID uuid.UUID) error {
	f.acks[ackKey{announcementID, userID}] = true
	return nil
}

type fakeDirectory struct {
	employees []*model.Employee
}

func (f *fakeDirectory) ListByCompany(_ context.Context, companyID uuid.UUID) ([]*model.Employee, error) {
	var out []*model.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ListByDepartment(_ context.Context, companyID uuid.UUID, department string) ([]*model.Employee, error) {
	var out []*model.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID && e.Department != nil && *e.Department == department {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeDirectory) Get(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeNotifier struct {
	sent []uuid.UUID
}

func (f *fakeNotifier) Enqueue(_ context.Context, recipientID uuid.UUID, _ model.NotificationType, _ string, _ model.JSONMap) error {
	f.sent = append(f.sent, recipientID)
	return nil
}

func (f *fakeNotifier) List(context.Context, uuid.UUID, bool) (*model.NotificationFeed, error) {
	return &model.NotificationFeed{}, nil
}

func (f *fakeNotifier) MarkRead(context.Context, uuid.UUID, []uuid.UUID) error { return nil }

func (f *fakeNotifier) CountUnread(context.Context, uuid.UUID) (int, error) { return 0, nil }

type recordingEmail struct {
	to []string
}

func (r *recordingEmail) Send(_ context.Context, to, _, _ string) error {
	r.to = append(r.to, to)
	return nil
}

type fixture struct {
	svc       *Service
	repo      *fakeAnnouncementRepo
	directory *fakeDirectory
	notifier  *fakeNotifier
	email     *recordingEmail
}

func newFixture(employees []*model.Employee) *fixture {
	repo := newFakeAnnouncementRepo()
	directory := &fakeDirectory{employees: employees}
	notifier := &fakeNotifier{}
	mail := &recordingEmail{}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel})
	return &fixture{
		svc:       NewService(repo, directory, notifier, mail, log),
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		email:     mail,
	}
}

func employee(companyID uuid.UUID, dept string) *model.Employee {
	e := &model.Employee{
		ID:        uuid.New(),
		CompanyID: companyID,
		Email:     uuid.NewString() + "@example.com",
	}
	if dept != "" {
		e.Department = &dept
	}
	return e
}

func TestPostFansOutToCompanyExceptAuthor(t *testing.T) {
	company := uuid.New()
	author := employee(company, "")
	others := []*model.Employee{author, employee(company, ""), employee(company, "")}
	fx := newFixture(others)

	a, err := fx.svc.Post(context.Background(), company, author.ID, &model.PostAnnouncementRequest{
		Title:   "Holiday schedule",
		Content: "Office closed Friday",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AudienceCompany, a.Audience)
	assert.Equal(t, model.PriorityNormal, a.Priority)

	assert.Len(t, fx.notifier.sent, 2)
	assert.NotContains(t, fx.notifier.sent, author.ID)
	assert.Empty(t, fx.email.to)
}

func TestPostUrgentSendsEmail(t *testing.T) {
	company := uuid.New()
	author := employee(company, "")
	worker := employee(company, "")
	fx := newFixture([]*model.Employee{author, worker})

	_, err := fx.svc.Post(context.Background(), company, author.ID, &model.PostAnnouncementRequest{
		Title:    "Site evacuation drill",
		Content:  "Assemble at the north lot",
		Priority: model.PriorityUrgent,
	})
	require.NoError(t, err)
	require.Len(t, fx.email.to, 1)
	assert.Equal(t, worker.Email, fx.email.to[0])
}

func TestPostDepartmentAudience(t *testing.T) {
	company := uuid.New()
	author := employee(company, "warehouse")
	warehouse := employee(company, "warehouse")
	office := employee(company, "office")
	fx := newFixture([]*model.Employee{author, warehouse, office})
	dept := "warehouse"

	_, err := fx.svc.Post(context.Background(), company, author.ID, &model.PostAnnouncementRequest{
		Title:      "Forklift training",
		Content:    "Sign up by Friday",
		Audience:   model.AudienceDepartment,
		Department: &dept,
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{warehouse.ID}, fx.notifier.sent)

	_, err = fx.svc.Post(context.Background(), company, author.ID, &model.PostAnnouncementRequest{
		Title:    "Missing department",
		Content:  "x",
		Audience: model.AudienceDepartment,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestListFiltersExpired(t *testing.T) {
	company := uuid.New()
	author := employee(company, "")
	fx := newFixture([]*model.Employee{author})
	past := time.Now().Add(-time.Hour)

	_, err := fx.svc.Post(context.Background(), company, author.ID, &model.PostAnnouncementRequest{
		Title:     "Expired",
		Content:   "old news",
		ExpiresAt: &past,
	})
	require.NoError(t, err)
	_, err = fx.svc.Post(context.Background(), company, author.ID, &model.PostAnnouncementRequest{
		Title:   "Current",
		Content: "fresh",
	})
	require.NoError(t, err)

	visible, err := fx.svc.List(context.Background(), company, author.ID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Current", visible[0].Title)

	all, err := fx.svc.List(context.Background(), company, author.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAcknowledge(t *testing.T) {
	company := uuid.New()
	author := employee(company, "")
	reader := employee(company, "")
	fx := newFixture([]*model.Employee{author, reader})

	plain, err := fx.svc.Post(context.Background(), company, author.ID, &model.PostAnnouncementRequest{
		Title:   "FYI",
		Content: "no ack needed",
	})
	require.NoError(t, err)

	err = fx.svc.Acknowledge(context.Background(), plain.ID, reader.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	tracked, err := fx.svc.Post(context.Background(), company, author.ID, &model.PostAnnouncementRequest{
		Title:                  "Policy update",
		Content:                "please confirm",
		RequiresAcknowledgment: true,
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Acknowledge(context.Background(), tracked.ID, reader.ID))
	// Repeat acks resolve without error.
	require.NoError(t, fx.svc.Acknowledge(context.Background(), tracked.ID, reader.ID))

	err = fx.svc.Acknowledge(context.Background(), uuid.New(), reader.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	visible, err := fx.svc.List(context.Background(), company, reader.ID, false)
	require.NoError(t, err)
	for _, a := range visible {
		if a.ID == tracked.ID {
			assert.True(t, a.AcknowledgedByRequester)
		}
	}
}
