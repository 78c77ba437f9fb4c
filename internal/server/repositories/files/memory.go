package files

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.File
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.File)}
}

func (r *MemoryRepository) ListByFolder(ctx context.Context, scope models.Scope, folderPath string) ([]*models.File, error) {
	items := r.filter(func(f *models.File) bool {
		return f.Folder == folderPath && scope.Allows(f.OwnerID)
	})
	sortByName(items)
	return items, nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	items := r.filter(func(f *models.File) bool { return f.OwnerID == ownerID })
	sortByName(items)
	return items, nil
}

func (r *MemoryRepository) List(ctx context.Context, scope models.Scope) ([]*models.File, error) {
	items := r.filter(func(f *models.File) bool { return scope.Allows(f.OwnerID) })
	sortNewestFirst(items)
	return items, nil
}

func (r *MemoryRepository) filter(keep func(*models.File) bool) []*models.File {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.File
	for _, f := range r.items {
		if keep(&f) {
			result = append(result, &f)
		}
	}
	return result
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &f, nil
}

func (r *MemoryRepository) GetByStorageKey(ctx context.Context, key string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.items {
		if f.StorageKey == key {
			return &f, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) Create(ctx context.Context, f *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[f.ID] = *f
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, patch models.FilePatch) error {
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

func applyPatch(f *models.File, patch models.FilePatch) {
	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.OriginalName != nil {
		f.OriginalName = *patch.OriginalName
	}
	if patch.Folder != nil {
		f.Folder = *patch.Folder
	}
	f.UpdatedAt = time.Now().UTC()
}

func sortByName(items []*models.File) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Folder != items[j].Folder {
			return items[i].Folder < items[j].Folder
		}
		return items[i].Name < items[j].Name
	})
}

func sortNewestFirst(items []*models.File) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
