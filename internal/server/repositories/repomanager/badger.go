package repomanager

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/dmitrijs2005/gophdrive/internal/filex"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/activitylogs"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
)

// BadgerRepositoryManager keeps all metadata in one embedded badger
// database.
type BadgerRepositoryManager struct {
	db           *badger.DB
	folders      *folders.BadgerRepository
	files        *files.BadgerRepository
	activityLogs *activitylogs.BadgerRepository
}

// NewBadgerRepositoryManager opens (creating if needed) the database in dir.
func NewBadgerRepositoryManager(dir string) (*BadgerRepositoryManager, error) {
	path, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path).
		WithLoggingLevel(badger.WARNING).
		WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return newBadgerRepositoryManager(db), nil
}

func newBadgerRepositoryManager(db *badger.DB) *BadgerRepositoryManager {
	return &BadgerRepositoryManager{
		db:           db,
		folders:      folders.NewBadgerRepository(db),
		files:        files.NewBadgerRepository(db),
		activityLogs: activitylogs.NewBadgerRepository(db),
	}
}

// RunMigrations is a no-op; badger records are schemaless JSON.
func (m *BadgerRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *BadgerRepositoryManager) Folders() folders.Repository { return m.folders }

func (m *BadgerRepositoryManager) Files() files.Repository { return m.files }

func (m *BadgerRepositoryManager) ActivityLogs() activitylogs.Repository { return m.activityLogs }

func (m *BadgerRepositoryManager) Close() error { return m.db.Close() }
