// Package services implements the drive operations: folder and file
// mutations over the flat metadata store, with cascading path rewrites,
// per-item batch outcomes and the session clipboard.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/pathx"
	"github.com/dmitrijs2005/gophdrive/internal/server/activity"
	"github.com/dmitrijs2005/gophdrive/internal/server/auth"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/activitylogs"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
)

const defaultCascadeConcurrency = 8

type DriveService struct {
	folders      folders.Repository
	files        files.Repository
	activityLogs activitylogs.Repository
	blobs        blobstore.Store
	gate         *auth.Gate
	sink         activity.Sink
	logger       logging.Logger

	cascadeConcurrency int
	now                func() time.Time
	newID              func() string
	newStorageKey      func(ownerID string) string
}

type Option func(*DriveService)

// WithCascadeConcurrency bounds the number of descendant updates in flight
// during one cascade.
func WithCascadeConcurrency(n int) Option {
	return func(s *DriveService) {
		if n > 0 {
			s.cascadeConcurrency = n
		}
	}
}

func NewDriveService(repos repomanager.RepositoryManager, blobs blobstore.Store, sink activity.Sink, logger logging.Logger, opts ...Option) *DriveService {
	s := &DriveService{
		folders:            repos.Folders(),
		files:              repos.Files(),
		activityLogs:       repos.ActivityLogs(),
		blobs:              blobs,
		gate:               auth.NewGate(),
		sink:               sink,
		logger:             logger.With("module", "drive"),
		cascadeConcurrency: defaultCascadeConcurrency,
		now:                time.Now,
		newID:              uuid.NewString,
		newStorageKey:      blobstore.NewStorageKey,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *DriveService) emit(ctx context.Context, p models.Principal, action, kind, name string, details map[string]string) {
	s.sink.Emit(ctx, activity.Event{
		PrincipalID:   p.ID,
		PrincipalName: p.Name,
		Action:        action,
		TargetKind:    kind,
		TargetName:    name,
		Details:       details,
	})
}

// getFolder loads a folder and hides it when it is outside scope.
func (s *DriveService) getFolder(ctx context.Context, scope models.Scope, id string) (*models.Folder, error) {
	f, err := s.folders.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("folder %s: %w", id, err)
	}
	if !scope.Allows(f.OwnerID) {
		return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	return f, nil
}

func (s *DriveService) getFile(ctx context.Context, scope models.Scope, id string) (*models.File, error) {
	f, err := s.files.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("file %s: %w", id, err)
	}
	if !scope.Allows(f.OwnerID) {
		return nil, fmt.Errorf("file %s: %w", id, common.ErrNotFound)
	}
	return f, nil
}

// resolveFolderPath validates a full folder path and checks that it names
// an existing folder visible in scope. The root always exists.
func (s *DriveService) resolveFolderPath(ctx context.Context, scope models.Scope, raw string) (string, error) {
	p, err := pathx.Parse(raw)
	if err != nil {
		return "", err
	}
	if p.IsRoot() {
		return "", nil
	}
	if _, err := s.findFolder(ctx, scope, p); err != nil {
		return "", err
	}
	return p.String(), nil
}

func (s *DriveService) findFolder(ctx context.Context, scope models.Scope, p pathx.Path) (*models.Folder, error) {
	siblings, err := s.folders.ListByParent(ctx, scope, p.Parent().String())
	if err != nil {
		return nil, err
	}
	for _, f := range siblings {
		if f.Name == p.Name() {
			return f, nil
		}
	}
	return nil, fmt.Errorf("folder %q: %w", p, common.ErrNotFound)
}

// siblingFolderNamed returns the folder at parentPath called name, other
// than excludeID, or nil.
func (s *DriveService) siblingFolderNamed(ctx context.Context, scope models.Scope, parentPath, name, excludeID string) (*models.Folder, error) {
	siblings, err := s.folders.ListByParent(ctx, scope, parentPath)
	if err != nil {
		return nil, err
	}
	for _, f := range siblings {
		if f.Name == name && f.ID != excludeID {
			return f, nil
		}
	}
	return nil, nil
}
