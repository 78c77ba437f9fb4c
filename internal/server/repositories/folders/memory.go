package folders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// MemoryRepository keeps folders in a map. Returned records are copies.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Folder
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Folder)}
}

func (r *MemoryRepository) ListByParent(ctx context.Context, scope models.Scope, parentPath string) ([]*models.Folder, error) {
	return r.filter(func(f *models.Folder) bool {
		return f.ParentPath == parentPath && scope.Allows(f.OwnerID)
	}), nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	return r.filter(func(f *models.Folder) bool { return f.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) filter(keep func(*models.Folder) bool) []*models.Folder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Folder
	for _, f := range r.items {
		if keep(&f) {
			result = append(result, &f)
		}
	}
	sortFolders(result)
	return result
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &f, nil
}

func (r *MemoryRepository) Create(ctx context.Context, f *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[f.ID] = *f
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, patch models.FolderPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.items[id]
	if !ok {
		return common.ErrNotFound
	}
	applyPatch(&f, patch)
	r.items[id] = f
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func applyPatch(f *models.Folder, patch models.FolderPatch) {
	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.ParentPath != nil {
		f.ParentPath = *patch.ParentPath
	}
	f.UpdatedAt = time.Now().UTC()
}

func sortFolders(items []*models.Folder) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].ParentPath != items[j].ParentPath {
			return items[i].ParentPath < items[j].ParentPath
		}
		return items[i].Name < items[j].Name
	})
}
