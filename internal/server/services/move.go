package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/pathx"
	"github.com/dmitrijs2005/gophdrive/internal/server/auth"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// Move relocates items into destination. The call as a whole fails, before
// anything is touched, when the capability is missing, destination does not
// exist, or destination lies inside one of the moved folders. Otherwise every
// item gets its own outcome.
func (s *DriveService) Move(ctx context.Context, p models.Principal, items []Item, destination string) (*BatchResult, error) {
	if err := s.gate.Require(p, auth.CapRenameOrMove); err != nil {
		return nil, err
	}
	scope := s.gate.VisibilityScope(p)

	dest, err := s.resolveFolderPath(ctx, scope, destination)
	if err != nil {
		return nil, err
	}
	if err := s.checkNotIntoSelf(ctx, scope, items, dest); err != nil {
		return nil, err
	}

	return runBatch(ctx, items, func(it Item) (int, error) {
		switch it.Kind {
		case KindFile:
			return 0, s.moveFile(ctx, p, scope, it.ID, dest)
		case KindFolder:
			return s.moveFolder(ctx, p, scope, it.ID, dest)
		default:
			return 0, fmt.Errorf("%w: unknown item kind %q", common.ErrInvalidPath, it.Kind)
		}
	}), nil
}

// checkNotIntoSelf rejects a destination equal to or below any moved
// folder. Folders that cannot be loaded are left for the per-item pass.
func (s *DriveService) checkNotIntoSelf(ctx context.Context, scope models.Scope, items []Item, dest string) error {
	destP, err := pathx.Parse(dest)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.Kind != KindFolder {
			continue
		}
		f, err := s.getFolder(ctx, scope, it.ID)
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		own, err := pathx.Parse(f.FullPath())
		if err != nil {
			return err
		}
		if destP.Equal(own) || destP.IsDescendantOf(own) {
			return fmt.Errorf("%w: cannot move %q into %q", common.ErrInvalidPath, own, destP)
		}
	}
	return nil
}

func (s *DriveService) moveFile(ctx context.Context, p models.Principal, scope models.Scope, id, dest string) error {
	f, err := s.getFile(ctx, scope, id)
	if err != nil {
		return err
	}
	if f.Folder == dest {
		return nil
	}
	if err := s.files.Update(ctx, f.ID, models.FilePatch{Folder: &dest}); err != nil {
		return fmt.Errorf("move file: %w", err)
	}

	s.emit(ctx, p, models.ActionMoveFile, models.TargetFile, f.Name,
		map[string]string{"from": f.Folder, "to": dest})
	f.Folder = dest
	return nil
}

func (s *DriveService) moveFolder(ctx context.Context, p models.Principal, scope models.Scope, id, dest string) (int, error) {
	f, err := s.getFolder(ctx, scope, id)
	if err != nil {
		return 0, err
	}
	if f.ParentPath == dest {
		return 0, nil
	}

	dup, err := s.siblingFolderNamed(ctx, scope, dest, f.Name, f.ID)
	if err != nil {
		return 0, err
	}
	if dup != nil {
		return 0, fmt.Errorf("folder %q: %w", pathx.FullPath(dest, f.Name), common.ErrDuplicateName)
	}

	oldPath := f.FullPath()
	newPath := pathx.FullPath(dest, f.Name)

	d, err := s.enumerateDescendants(ctx, f.OwnerID, oldPath)
	if err != nil {
		return 0, err
	}

	if err := s.folders.Update(ctx, f.ID, models.FolderPatch{ParentPath: &dest}); err != nil {
		return 0, fmt.Errorf("move folder: %w", err)
	}
	f.ParentPath = dest

	out := s.rebase(ctx, d, oldPath, newPath)

	s.emit(ctx, p, models.ActionMoveFolder, models.TargetFolder, f.Name, map[string]string{
		"old_path": oldPath,
		"new_path": newPath,
		"rebased":  strconv.Itoa(out.rebased),
	})

	if err := cascadeError(f.OwnerID, oldPath, newPath, out); err != nil {
		s.logger.Error(ctx, "folder move left descendants behind",
			"folder_id", f.ID, "old_path", oldPath, "new_path", newPath, "failed", len(out.failed))
		return out.rebased, err
	}
	return out.rebased, nil
}
