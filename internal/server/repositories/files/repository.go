// Package files stores file metadata records. The bytes themselves live in
// the blob store under File.StorageKey.
package files

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type Repository interface {
	// ListByFolder returns files whose Folder equals folderPath exactly.
	ListByFolder(ctx context.Context, scope models.Scope, folderPath string) ([]*models.File, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error)
	List(ctx context.Context, scope models.Scope) ([]*models.File, error)
	Get(ctx context.Context, id string) (*models.File, error)
	// GetByStorageKey returns the record referencing key or common.ErrNotFound.
	GetByStorageKey(ctx context.Context, key string) (*models.File, error)
	Create(ctx context.Context, file *models.File) error
	Update(ctx context.Context, id string, patch models.FilePatch) error
	Delete(ctx context.Context, id string) error
}
