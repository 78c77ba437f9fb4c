package activitylogs

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items []models.ActivityLog
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, e *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, *e)
	return nil
}

func (r *MemoryRepository) ListRecent(ctx context.Context, scope models.Scope, limit int) ([]*models.ActivityLog, error) {
	r.mu.RLock()
	var result []*models.ActivityLog
	for _, e := range r.items {
		if scope.Allows(e.PrincipalID) {
			result = append(result, &e)
		}
	}
	r.mu.RUnlock()

	return newestFirst(result, limit), nil
}

func newestFirst(items []*models.ActivityLog, limit int) []*models.ActivityLog {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
