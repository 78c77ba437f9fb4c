package folders

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

const keyPrefix = "folder:"

func key(id string) []byte { return []byte(keyPrefix + id) }

// BadgerRepository stores folders as JSON values under "folder:<id>".
// Listings are prefix scans filtered in memory.
type BadgerRepository struct {
	db *badger.DB
}

var _ Repository = (*BadgerRepository)(nil)

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func (r *BadgerRepository) ListByParent(ctx context.Context, scope models.Scope, parentPath string) ([]*models.Folder, error) {
	items, err := dbx.BadgerScan(ctx, r.db, []byte(keyPrefix), func(f *models.Folder) bool {
		return f.ParentPath == parentPath && scope.Allows(f.OwnerID)
	})
	if err != nil {
		return nil, err
	}
	sortFolders(items)
	return items, nil
}

func (r *BadgerRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	items, err := dbx.BadgerScan(ctx, r.db, []byte(keyPrefix), func(f *models.Folder) bool {
		return f.OwnerID == ownerID
	})
	if err != nil {
		return nil, err
	}
	sortFolders(items)
	return items, nil
}

func (r *BadgerRepository) Get(ctx context.Context, id string) (*models.Folder, error) {
	return dbx.BadgerGet[models.Folder](r.db, key(id))
}

func (r *BadgerRepository) Create(ctx context.Context, f *models.Folder) error {
	return dbx.BadgerPut(r.db, key(f.ID), f, false)
}

func (r *BadgerRepository) Update(ctx context.Context, id string, patch models.FolderPatch) error {
	return dbx.BadgerModify(r.db, key(id), func(f *models.Folder) { applyPatch(f, patch) })
}

func (r *BadgerRepository) Delete(ctx context.Context, id string) error {
	return dbx.BadgerDelete(r.db, key(id))
}
