package memory

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/workstream/comms-api/internal/model"
)

// PresenceStore keeps presence in process memory. Presence is
// ephemeral state, so losing it on restart just means everyone shows
// offline until their next heartbeat.
type PresenceStore struct {
	cache *gocache.Cache
}

// NewPresenceStore retains entries for well past the staleness TTL so
// the read path decides staleness itself; eviction only bounds memory.
func NewPresenceStore(retention time.Duration) *PresenceStore {
	return &PresenceStore{
		cache: gocache.New(retention, retention/2),
	}
}

// Update is last-writer-wins per user.
func (s *PresenceStore) Update(p *model.Presence) {
	s.cache.SetDefault(p.UserID.String(), p)
}

func (s *PresenceStore) Get(userID uuid.UUID) (*model.Presence, bool) {
	v, ok := s.cache.Get(userID.String())
	if !ok {
		return nil, false
	}
	return v.(*model.Presence), true
}
