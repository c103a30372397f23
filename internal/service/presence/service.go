package presence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/model"
	"github.com/workstream/comms-api/internal/repository"
	apperrors "github.com/workstream/comms-api/pkg/errors"
)

// Service tracks per-user reachability. Staleness is applied lazily on
// the read path, so no background sweep can race a heartbeat.
type Service struct {
	store repository.PresenceStore
	ttl   time.Duration
	now   func() time.Time
}

func NewService(store repository.PresenceStore, ttl time.Duration) *Service {
	return &Service{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *Service) Update(_ context.Context, userID uuid.UUID, status model.PresenceStatus, customMessage *string) (*model.Presence, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("invalid presence status", nil)
	}
	p := &model.Presence{
		UserID:        userID,
		Status:        status,
		CustomMessage: customMessage,
		LastSeen:      s.now(),
	}
	s.store.Update(p)
	return p, nil
}

// Get returns the effective presence for each id. A stored non-offline
// status past the TTL is reported as offline; the stored entry is left
// alone so a concurrent heartbeat is never clobbered.
func (s *Service) Get(_ context.Context, userIDs []uuid.UUID) []*model.Presence {
	now := s.now()
	out := make([]*model.Presence, 0, len(userIDs))
	for _, id := range userIDs {
		stored, ok := s.store.Get(id)
		if !ok {
			out = append(out, &model.Presence{UserID: id, Status: model.PresenceOffline})
			continue
		}
		p := *stored
		if p.Status != model.PresenceOffline && now.Sub(p.LastSeen) > s.ttl {
			p.Status = model.PresenceOffline
		}
		out = append(out, &p)
	}
	return out
}

// EffectiveStatus is the single-user form used for enrichment.
func (s *Service) EffectiveStatus(userID uuid.UUID) model.PresenceStatus {
	stored, ok := s.store.Get(userID)
	if !ok {
		return model.PresenceOffline
	}
	if stored.Status != model.PresenceOffline && s.now().Sub(stored.LastSeen) > s.ttl {
		return model.PresenceOffline
	}
	return stored.Status
}
