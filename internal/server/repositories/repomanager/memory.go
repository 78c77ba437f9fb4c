package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/activitylogs"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
)

// MemoryRepositoryManager holds everything in process memory. Data is lost
// on restart.
type MemoryRepositoryManager struct {
	folders      *folders.MemoryRepository
	files        *files.MemoryRepository
	activityLogs *activitylogs.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		folders:      folders.NewMemoryRepository(),
		files:        files.NewMemoryRepository(),
		activityLogs: activitylogs.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Folders() folders.Repository { return m.folders }

func (m *MemoryRepositoryManager) Files() files.Repository { return m.files }

func (m *MemoryRepositoryManager) ActivityLogs() activitylogs.Repository { return m.activityLogs }

func (m *MemoryRepositoryManager) Close() error { return nil }
