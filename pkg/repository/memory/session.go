package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/model"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[model.SessionID]*model.Session
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[model.SessionID]*model.Session),
	}
}

func copyHazard(h *model.Hazard) *model.Hazard {
	copied := *h
	if h.Situations != nil {
		copied.Situations = make([]model.SituationRef, len(h.Situations))
		copy(copied.Situations, h.Situations)
	}
	return &copied
}

func copySession(s *model.Session) *model.Session {
	copied := *s
	if s.Functions != nil {
		copied.Functions = make([]model.ItemFunction, len(s.Functions))
		copy(copied.Functions, s.Functions)
	}
	if s.Hazards != nil {
		copied.Hazards = make([]*model.Hazard, 0, len(s.Hazards))
		for _, h := range s.Hazards {
			copied.Hazards = append(copied.Hazards, copyHazard(h))
		}
	}
	if s.SafetyGoals != nil {
		copied.SafetyGoals = make([]model.SafetyGoal, len(s.SafetyGoals))
		copy(copied.SafetyGoals, s.SafetyGoals)
	}
	return &copied
}

func (r *sessionRepository) Create(ctx context.Context, sess *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copySession(sess)
	if created.ID == "" {
		created.ID = model.NewSessionID()
	}

	now := time.Now().UTC()
	created.Version = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	r.sessions[created.ID] = created
	return copySession(created), nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, exists := r.sessions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return copySession(sess), nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*model.Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, copySession(sess))
	}

	// Sort by CreatedAt descending
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, sess *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.sessions[sess.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", sess.ID))
	}
	if existing.Version != sess.Version {
		return nil, goerr.Wrap(ErrVersionMismatch, "session was modified concurrently",
			goerr.V("id", sess.ID),
			goerr.V("expected", sess.Version),
			goerr.V("actual", existing.Version))
	}

	updated := copySession(sess)
	updated.Version = existing.Version + 1
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.sessions[updated.ID] = updated
	return copySession(updated), nil
}
