package activitylogs

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

const keyPrefix = "activity:"

type BadgerRepository struct {
	db *badger.DB
}

var _ Repository = (*BadgerRepository)(nil)

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

// Create keys entries by timestamp so the natural iteration order is
// chronological.
func (r *BadgerRepository) Create(ctx context.Context, e *models.ActivityLog) error {
	k := keyPrefix + e.CreatedAt.UTC().Format("20060102T150405.000000000") + ":" + e.ID
	return dbx.BadgerPut(r.db, []byte(k), e, false)
}

func (r *BadgerRepository) ListRecent(ctx context.Context, scope models.Scope, limit int) ([]*models.ActivityLog, error) {
	items, err := dbx.BadgerScan(ctx, r.db, []byte(keyPrefix), func(e *models.ActivityLog) bool {
		return scope.Allows(e.PrincipalID)
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(items, limit), nil
}
