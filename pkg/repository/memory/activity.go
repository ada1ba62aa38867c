package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fusa-lab/talos/pkg/domain/model"
)

type activityRepository struct {
	mu      sync.RWMutex
	entries map[model.SessionID][]*model.Activity
}

func newActivityRepository() *activityRepository {
	return &activityRepository{
		entries: make(map[model.SessionID][]*model.Activity),
	}
}

func copyActivity(a *model.Activity) *model.Activity {
	copied := *a
	return &copied
}

func (r *activityRepository) Create(ctx context.Context, entry *model.Activity) (*model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyActivity(entry)
	if created.ID == "" {
		created.ID = model.NewActivityID()
	}
	created.CreatedAt = time.Now().UTC()

	r.entries[created.SessionID] = append(r.entries[created.SessionID], created)
	return copyActivity(created), nil
}

func (r *activityRepository) List(ctx context.Context, sessionID model.SessionID) ([]*model.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all, exists := r.entries[sessionID]
	if !exists {
		return []*model.Activity{}, nil
	}

	// Sort by CreatedAt ascending so the trail reads in order
	sorted := make([]*model.Activity, 0, len(all))
	for _, a := range all {
		sorted = append(sorted, copyActivity(a))
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	return sorted, nil
}
