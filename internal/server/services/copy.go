package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/auth"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

const copySuffix = " (copy)"

// Copy duplicates items into destination. Files get a new blob and record
// with the same name. Folders get a new empty record; their contents are not
// copied.
func (s *DriveService) Copy(ctx context.Context, p models.Principal, items []Item, destination string) (*BatchResult, error) {
	scope := s.gate.VisibilityScope(p)

	dest, err := s.resolveFolderPath(ctx, scope, destination)
	if err != nil {
		return nil, err
	}

	return runBatch(ctx, items, func(it Item) (int, error) {
		switch it.Kind {
		case KindFile:
			return 0, s.copyFile(ctx, p, scope, it.ID, dest)
		case KindFolder:
			return 0, s.copyFolder(ctx, p, scope, it.ID, dest)
		default:
			return 0, fmt.Errorf("%w: unknown item kind %q", common.ErrInvalidPath, it.Kind)
		}
	}), nil
}

func (s *DriveService) copyFile(ctx context.Context, p models.Principal, scope models.Scope, id, dest string) error {
	if err := s.gate.Require(p, auth.CapUploadFile); err != nil {
		return err
	}
	src, err := s.getFile(ctx, scope, id)
	if err != nil {
		return err
	}

	rc, err := s.blobs.Open(ctx, src.StorageKey)
	if err != nil {
		return fmt.Errorf("read blob %s: %w", src.StorageKey, err)
	}
	defer rc.Close()

	key := s.newStorageKey(p.ID)
	body := &countingReader{r: rc}
	if err := s.blobs.Put(ctx, key, body, src.Size, src.MimeType); err != nil {
		return fmt.Errorf("write blob copy: %w", err)
	}

	now := s.now().UTC()
	f := &models.File{
		ID:           s.newID(),
		Name:         src.Name,
		OriginalName: src.OriginalName,
		Size:         body.n,
		MimeType:     src.MimeType,
		StorageKey:   key,
		Folder:       dest,
		OwnerID:      p.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.files.Create(ctx, f); err != nil {
		s.logger.Warn(ctx, "orphaned blob: copied file record not created", "storage_key", key, "error", err)
		return fmt.Errorf("create file copy: %w", err)
	}

	s.emit(ctx, p, models.ActionCopyFile, models.TargetFile, f.Name,
		map[string]string{"from": src.Folder, "to": dest})
	return nil
}

func (s *DriveService) copyFolder(ctx context.Context, p models.Principal, scope models.Scope, id, dest string) error {
	if err := s.gate.Require(p, auth.CapCreateFolder); err != nil {
		return err
	}
	src, err := s.getFolder(ctx, scope, id)
	if err != nil {
		return err
	}

	name, err := s.freeFolderName(ctx, scope, dest, src.Name)
	if err != nil {
		return err
	}

	f, err := s.createFolderRecord(ctx, p, scope, dest, name)
	if err != nil {
		return err
	}

	s.emit(ctx, p, models.ActionCopyFolder, models.TargetFolder, f.Name,
		map[string]string{"from": src.FullPath(), "path": f.FullPath()})
	return nil
}

// freeFolderName returns name if no folder at parent uses it, otherwise the
// first of "name (copy)", "name (copy 2)", ... that is free.
func (s *DriveService) freeFolderName(ctx context.Context, scope models.Scope, parent, name string) (string, error) {
	siblings, err := s.folders.ListByParent(ctx, scope, parent)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(siblings))
	for _, f := range siblings {
		taken[f.Name] = true
	}

	candidate := name
	for n := 1; taken[candidate]; n++ {
		if n == 1 {
			candidate = name + copySuffix
		} else {
			candidate = fmt.Sprintf("%s (copy %d)", name, n)
		}
	}
	return candidate, nil
}
