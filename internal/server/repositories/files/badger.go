package files

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

const keyPrefix = "file:"

func key(id string) []byte { return []byte(keyPrefix + id) }

type BadgerRepository struct {
	db *badger.DB
}

var _ Repository = (*BadgerRepository)(nil)

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func (r *BadgerRepository) scan(ctx context.Context, keep func(*models.File) bool) ([]*models.File, error) {
	return dbx.BadgerScan(ctx, r.db, []byte(keyPrefix), keep)
}

func (r *BadgerRepository) ListByFolder(ctx context.Context, scope models.Scope, folderPath string) ([]*models.File, error) {
	items, err := r.scan(ctx, func(f *models.File) bool {
		return f.Folder == folderPath && scope.Allows(f.OwnerID)
	})
	if err != nil {
		return nil, err
	}
	sortByName(items)
	return items, nil
}

func (r *BadgerRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	items, err := r.scan(ctx, func(f *models.File) bool { return f.OwnerID == ownerID })
	if err != nil {
		return nil, err
	}
	sortByName(items)
	return items, nil
}

func (r *BadgerRepository) List(ctx context.Context, scope models.Scope) ([]*models.File, error) {
	items, err := r.scan(ctx, func(f *models.File) bool { return scope.Allows(f.OwnerID) })
	if err != nil {
		return nil, err
	}
	sortNewestFirst(items)
	return items, nil
}

func (r *BadgerRepository) Get(ctx context.Context, id string) (*models.File, error) {
	return dbx.BadgerGet[models.File](r.db, key(id))
}

func (r *BadgerRepository) GetByStorageKey(ctx context.Context, storageKey string) (*models.File, error) {
	items, err := r.scan(ctx, func(f *models.File) bool { return f.StorageKey == storageKey })
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.ErrNotFound
	}
	return items[0], nil
}

func (r *BadgerRepository) Create(ctx context.Context, f *models.File) error {
	return dbx.BadgerPut(r.db, key(f.ID), f, false)
}

func (r *BadgerRepository) Update(ctx context.Context, id string, patch models.FilePatch) error {
	return dbx.BadgerModify(r.db, key(id), func(f *models.File) { applyPatch(f, patch) })
}

func (r *BadgerRepository) Delete(ctx context.Context, id string) error {
	return dbx.BadgerDelete(r.db, key(id))
}
