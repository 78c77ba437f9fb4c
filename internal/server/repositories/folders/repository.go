// Package folders stores folder records. Every listing takes a models.Scope
// so callers without full visibility only see their own folders.
package folders

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type Repository interface {
	// ListByParent returns the direct children of parentPath ("" for root).
	ListByParent(ctx context.Context, scope models.Scope, parentPath string) ([]*models.Folder, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Folder, error)
	Get(ctx context.Context, id string) (*models.Folder, error)
	Create(ctx context.Context, folder *models.Folder) error
	Update(ctx context.Context, id string, patch models.FolderPatch) error
	Delete(ctx context.Context, id string) error
}
