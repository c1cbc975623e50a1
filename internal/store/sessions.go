package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/microlearn-backend/internal/domain"
	pkgerrors "github.com/yungbote/microlearn-backend/internal/pkg/errors"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

type sessionSlot struct {
	mu     sync.Mutex
	record *domain.ProgressRecord
}

// SessionStore holds per-session progress records in memory. Each slot has
// its own mutex, so mutations on one id serialize while distinct ids run
// fully concurrent. Callers only ever see copies of the stored record.
type SessionStore struct {
	log   *logger.Logger
	mu    sync.RWMutex
	slots map[string]*sessionSlot
}

func NewSessionStore(log *logger.Logger) *SessionStore {
	return &SessionStore{
		log:   log.With("service", "store.Sessions"),
		slots: make(map[string]*sessionSlot),
	}
}

// Create registers a fresh record under a new UUID and returns a copy.
func (s *SessionStore) Create() *domain.ProgressRecord {
	id := uuid.New().String()
	rec := domain.NewProgressRecord(id)

	s.mu.Lock()
	s.slots[id] = &sessionSlot{record: rec}
	s.mu.Unlock()

	s.log.Debug("session created", "session_id", id)
	return rec.Clone()
}

func (s *SessionStore) slot(id string) *sessionSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[id]
}

// Get returns a copy of the record, or ErrSessionNotFound.
func (s *SessionStore) Get(id string) (*domain.ProgressRecord, error) {
	sl := s.slot(id)
	if sl == nil {
		return nil, pkgerrors.ErrSessionNotFound
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.record.Clone(), nil
}

// Update applies fn to the record under its slot lock and returns a copy of
// the mutated record. Unknown ids fail with ErrSessionNotFound; an error
// from fn aborts the update.
func (s *SessionStore) Update(id string, fn func(*domain.ProgressRecord) error) (*domain.ProgressRecord, error) {
	sl := s.slot(id)
	if sl == nil {
		return nil, pkgerrors.ErrSessionNotFound
	}
	return sl.apply(fn)
}

// Upsert is Update with create-if-absent semantics under the supplied id.
func (s *SessionStore) Upsert(id string, fn func(*domain.ProgressRecord) error) (*domain.ProgressRecord, error) {
	sl := s.slot(id)
	if sl == nil {
		s.mu.Lock()
		sl = s.slots[id]
		if sl == nil {
			sl = &sessionSlot{record: domain.NewProgressRecord(id)}
			s.slots[id] = sl
			s.log.Debug("session created", "session_id", id)
		}
		s.mu.Unlock()
	}
	return sl.apply(fn)
}

// apply runs fn against a working copy and publishes it only on success, so
// a failed mutation leaves the stored record untouched.
func (sl *sessionSlot) apply(fn func(*domain.ProgressRecord) error) (*domain.ProgressRecord, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	work := sl.record.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	sl.record = work
	return work.Clone(), nil
}

// Len reports how many sessions exist.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}
