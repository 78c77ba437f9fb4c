package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/pathx"
	"github.com/dmitrijs2005/gophdrive/internal/server/auth"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// CreateFolder adds a folder called name under parentPath.
func (s *DriveService) CreateFolder(ctx context.Context, p models.Principal, parentPath, name string) (*models.Folder, error) {
	if err := s.gate.Require(p, auth.CapCreateFolder); err != nil {
		return nil, err
	}
	if err := pathx.ValidateName(name); err != nil {
		return nil, err
	}
	scope := s.gate.VisibilityScope(p)

	parent, err := s.resolveFolderPath(ctx, scope, parentPath)
	if err != nil {
		return nil, err
	}

	f, err := s.createFolderRecord(ctx, p, scope, parent, name)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, p, models.ActionCreateFolder, models.TargetFolder, f.Name,
		map[string]string{"path": f.FullPath()})

	return f, nil
}

// createFolderRecord checks for a sibling with the same name and writes the
// record. The parent is assumed to exist.
func (s *DriveService) createFolderRecord(ctx context.Context, p models.Principal, scope models.Scope, parent, name string) (*models.Folder, error) {
	dup, err := s.siblingFolderNamed(ctx, scope, parent, name, "")
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, fmt.Errorf("folder %q: %w", pathx.FullPath(parent, name), common.ErrDuplicateName)
	}

	now := s.now().UTC()
	f := &models.Folder{
		ID:         s.newID(),
		Name:       name,
		ParentPath: parent,
		OwnerID:    p.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.folders.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return f, nil
}

// RenameFolder renames a folder and rewrites the paths of everything below
// it. When some descendants could not be rewritten the folder keeps its new
// name and a *common.PartialCascadeError is returned alongside it.
// Only records owned by the folder's owner are rewritten; files or folders
// another principal created inside it keep the old path.
func (s *DriveService) RenameFolder(ctx context.Context, p models.Principal, folderID, newName string) (*models.Folder, error) {
	if err := s.gate.Require(p, auth.CapRenameOrMove); err != nil {
		return nil, err
	}
	if err := pathx.ValidateName(newName); err != nil {
		return nil, err
	}
	scope := s.gate.VisibilityScope(p)

	f, err := s.getFolder(ctx, scope, folderID)
	if err != nil {
		return nil, err
	}
	if f.Name == newName {
		return f, nil
	}

	dup, err := s.siblingFolderNamed(ctx, scope, f.ParentPath, newName, f.ID)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, fmt.Errorf("folder %q: %w", pathx.FullPath(f.ParentPath, newName), common.ErrDuplicateName)
	}

	oldPath := f.FullPath()
	newPath := pathx.FullPath(f.ParentPath, newName)

	d, err := s.enumerateDescendants(ctx, f.OwnerID, oldPath)
	if err != nil {
		return nil, err
	}

	if err := s.folders.Update(ctx, f.ID, models.FolderPatch{Name: &newName}); err != nil {
		return nil, fmt.Errorf("rename folder: %w", err)
	}
	oldName := f.Name
	f.Name = newName

	out := s.rebase(ctx, d, oldPath, newPath)
	cerr := cascadeError(f.OwnerID, oldPath, newPath, out)

	s.emit(ctx, p, models.ActionRenameFolder, models.TargetFolder, oldName, map[string]string{
		"old_path": oldPath,
		"new_path": newPath,
		"rebased":  strconv.Itoa(out.rebased),
	})
	if cerr != nil {
		s.logger.Error(ctx, "folder rename left descendants behind",
			"folder_id", f.ID, "old_path", oldPath, "new_path", newPath, "failed", len(out.failed))
		return f, cerr
	}

	return f, nil
}

// DeleteFolder removes an empty folder. Only direct file children block the
// delete; subfolders do not.
func (s *DriveService) DeleteFolder(ctx context.Context, p models.Principal, folderID string) error {
	if err := s.gate.Require(p, auth.CapDeleteFolder); err != nil {
		return err
	}
	scope := s.gate.VisibilityScope(p)

	f, err := s.getFolder(ctx, scope, folderID)
	if err != nil {
		return err
	}

	children, err := s.files.ListByFolder(ctx, scope, f.FullPath())
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("folder %q has %d files: %w", f.FullPath(), len(children), common.ErrFolderNotEmpty)
	}

	if err := s.folders.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	s.emit(ctx, p, models.ActionDeleteFolder, models.TargetFolder, f.Name,
		map[string]string{"path": f.FullPath()})
	return nil
}
