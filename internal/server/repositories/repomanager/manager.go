// Package repomanager wires the folder, file and activity repositories of
// one metadata backend together and owns the backend's lifecycle.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/activitylogs"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Folders() folders.Repository
	Files() files.Repository
	ActivityLogs() activitylogs.Repository
	Close() error
}

// Backend names accepted by New.
const (
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
	BackendMemory   = "memory"
)

type Options struct {
	Backend     string
	DatabaseDSN string
	BadgerDir   string
}

// New opens the backend selected by opts.Backend.
func New(opts Options) (RepositoryManager, error) {
	switch opts.Backend {
	case BackendPostgres:
		return NewPostgresRepositoryManager(opts.DatabaseDSN)
	case BackendBadger:
		return NewBadgerRepositoryManager(opts.BadgerDir)
	case BackendMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", opts.Backend)
	}
}
