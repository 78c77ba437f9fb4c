package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/pathx"
	"github.com/dmitrijs2005/gophdrive/internal/server/auth"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// descendants is the set of records under one folder path, captured before
// any of them is touched.
type descendants struct {
	folders []*models.Folder
	files   []*models.File
}

func (d *descendants) len() int { return len(d.folders) + len(d.files) }

func (s *DriveService) enumerateDescendants(ctx context.Context, ownerID, oldPath string) (*descendants, error) {
	allFolders, err := s.folders.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("enumerate folders: %w", err)
	}
	allFiles, err := s.files.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("enumerate files: %w", err)
	}

	d := &descendants{}
	for _, f := range allFolders {
		if pathx.IsUnder(f.ParentPath, oldPath) {
			d.folders = append(d.folders, f)
		}
	}
	for _, f := range allFiles {
		if pathx.IsUnder(f.Folder, oldPath) {
			d.files = append(d.files, f)
		}
	}
	return d, nil
}

type cascadeOutcome struct {
	mu      sync.Mutex
	rebased int
	failed  []string
}

func (o *cascadeOutcome) record(id string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case err == nil:
		o.rebased++
	case errors.Is(err, common.ErrNotFound):
		// Deleted or moved by someone else meanwhile.
	default:
		o.failed = append(o.failed, id)
	}
}

// rebase rewrites every enumerated descendant from oldPath to newPath:
// folders first, then files. Each record is attempted exactly once; failures
// are collected rather than stopping the cascade.
func (s *DriveService) rebase(ctx context.Context, d *descendants, oldPath, newPath string) *cascadeOutcome {
	out := &cascadeOutcome{}

	g := &errgroup.Group{}
	g.SetLimit(s.cascadeConcurrency)
	for _, f := range d.folders {
		g.Go(func() error {
			out.record(f.ID, s.rebaseFolder(ctx, f, oldPath, newPath))
			return nil
		})
	}
	_ = g.Wait()

	g = &errgroup.Group{}
	g.SetLimit(s.cascadeConcurrency)
	for _, f := range d.files {
		g.Go(func() error {
			out.record(f.ID, s.rebaseFile(ctx, f, oldPath, newPath))
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *DriveService) rebaseFolder(ctx context.Context, f *models.Folder, oldPath, newPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	parent, err := pathx.RebaseString(f.ParentPath, oldPath, newPath)
	if err != nil {
		return err
	}
	if err := s.folders.Update(ctx, f.ID, models.FolderPatch{ParentPath: &parent}); err != nil {
		s.logger.Warn(ctx, "cascade folder update failed", "folder_id", f.ID, "error", err)
		return err
	}
	return nil
}

func (s *DriveService) rebaseFile(ctx context.Context, f *models.File, oldPath, newPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	folder, err := pathx.RebaseString(f.Folder, oldPath, newPath)
	if err != nil {
		return err
	}
	if err := s.files.Update(ctx, f.ID, models.FilePatch{Folder: &folder}); err != nil {
		s.logger.Warn(ctx, "cascade file update failed", "file_id", f.ID, "error", err)
		return err
	}
	return nil
}

// cascadeError turns a finished cascade into nil or a PartialCascadeError.
func cascadeError(ownerID, oldPath, newPath string, out *cascadeOutcome) error {
	if len(out.failed) == 0 {
		return nil
	}
	return &common.PartialCascadeError{
		OwnerID: ownerID,
		OldPath: oldPath,
		NewPath: newPath,
		Rebased: out.rebased,
		Failed:  out.failed,
	}
}

// RetryCascade re-runs only the descendant rewrite of an earlier rename or
// move. Records already carrying newPath no longer match oldPath and are
// left alone. It returns the number of records rebased by this run.
func (s *DriveService) RetryCascade(ctx context.Context, p models.Principal, ownerID, oldPath, newPath string) (int, error) {
	if err := s.gate.Require(p, auth.CapRenameOrMove); err != nil {
		return 0, err
	}
	if !s.gate.VisibilityScope(p).Allows(ownerID) {
		return 0, fmt.Errorf("%w: cannot rewrite records of another owner", common.ErrPermissionDenied)
	}

	oldP, err := pathx.Parse(oldPath)
	if err != nil {
		return 0, err
	}
	newP, err := pathx.Parse(newPath)
	if err != nil {
		return 0, err
	}
	if oldP.IsRoot() || newP.IsRoot() {
		return 0, fmt.Errorf("%w: cascade endpoints must not be the root", common.ErrInvalidPath)
	}
	if newP.IsDescendantOf(oldP) {
		return 0, fmt.Errorf("%w: %q is inside %q", common.ErrInvalidPath, newPath, oldPath)
	}

	d, err := s.enumerateDescendants(ctx, ownerID, oldP.String())
	if err != nil {
		return 0, err
	}
	out := s.rebase(ctx, d, oldP.String(), newP.String())

	s.logger.Info(ctx, "cascade retried", "owner_id", ownerID, "old_path", oldPath, "new_path", newPath,
		"rebased", out.rebased, "failed", len(out.failed))

	return out.rebased, cascadeError(ownerID, oldP.String(), newP.String(), out)
}
