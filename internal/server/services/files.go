package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/pathx"
	"github.com/dmitrijs2005/gophdrive/internal/server/auth"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// UploadInput describes the bytes being uploaded. Size is a hint for the
// blob store and may be -1; the record keeps the byte count actually stored.
// When StorageKey is set the blob is assumed to be stored already (a retry
// after a failed record write, or a direct upload) and only the record is
// created.
type UploadInput struct {
	Name       string
	MimeType   string
	Size       int64
	Body       io.Reader
	StorageKey string
}

type UploadResult struct {
	File *models.File
	URL  string
}

// Upload stores the blob first and then the record pointing at it.
func (s *DriveService) Upload(ctx context.Context, p models.Principal, folderPath string, in UploadInput) (*UploadResult, error) {
	if err := s.gate.Require(p, auth.CapUploadFile); err != nil {
		return nil, err
	}
	if err := pathx.ValidateName(in.Name); err != nil {
		return nil, err
	}
	scope := s.gate.VisibilityScope(p)

	folder, err := s.resolveFolderPath(ctx, scope, folderPath)
	if err != nil {
		return nil, err
	}

	return s.uploadInto(ctx, p, folder, in)
}

func (s *DriveService) uploadInto(ctx context.Context, p models.Principal, folder string, in UploadInput) (*UploadResult, error) {
	key := in.StorageKey
	var size int64
	if key == "" {
		if in.Body == nil {
			return nil, fmt.Errorf("%w: upload of %q has no body", common.ErrInvalidPath, in.Name)
		}
		key = s.newStorageKey(p.ID)
		body := &countingReader{r: in.Body}
		if err := s.blobs.Put(ctx, key, body, in.Size, in.MimeType); err != nil {
			return nil, fmt.Errorf("store blob: %w", err)
		}
		size = body.n
	} else {
		n, err := s.claimStoredBlob(ctx, p, key)
		if err != nil {
			return nil, err
		}
		size = n
	}

	now := s.now().UTC()
	f := &models.File{
		ID:           s.newID(),
		Name:         in.Name,
		OriginalName: in.Name,
		Size:         size,
		MimeType:     in.MimeType,
		StorageKey:   key,
		Folder:       folder,
		OwnerID:      p.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.files.Create(ctx, f); err != nil {
		s.logger.Warn(ctx, "orphaned blob: file record not created",
			"storage_key", key, "name", in.Name, "folder", folder, "error", err)
		return nil, fmt.Errorf("create file record (blob %s kept): %w", key, err)
	}

	url, err := s.blobs.URL(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "retrieval url unavailable", "storage_key", key, "error", err)
	}

	s.emit(ctx, p, models.ActionUploadFile, models.TargetFile, f.Name,
		map[string]string{"folder": folder, "size": fmt.Sprint(f.Size)})

	return &UploadResult{File: f, URL: url}, nil
}

// claimStoredBlob vets a caller-supplied storage key: it must be in the
// principal's own namespace, the blob must exist and no record may point at
// it yet. It returns the stored size.
func (s *DriveService) claimStoredBlob(ctx context.Context, p models.Principal, key string) (int64, error) {
	if !blobstore.OwnedBy(key, p.ID) {
		return 0, fmt.Errorf("storage key %s: %w", key, common.ErrPermissionDenied)
	}

	existing, err := s.files.GetByStorageKey(ctx, key)
	switch {
	case err == nil:
		return 0, fmt.Errorf("storage key %s (file %s): %w", key, existing.ID, common.ErrStorageKeyInUse)
	case !errors.Is(err, common.ErrNotFound):
		return 0, fmt.Errorf("look up storage key: %w", err)
	}

	size, err := s.blobs.Stat(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("stat blob: %w", err)
	}
	return size, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// UploadTicket lets a client write a blob straight to the store. The file
// record is created afterwards by Upload with StorageKey set.
type UploadTicket struct {
	StorageKey string
	URL        string
}

// RequestUpload reserves a storage key in folderPath and presigns a direct
// upload to it. Stores that cannot presign answer common.ErrNotSupported.
func (s *DriveService) RequestUpload(ctx context.Context, p models.Principal, folderPath, name, mimeType string) (*UploadTicket, error) {
	if err := s.gate.Require(p, auth.CapUploadFile); err != nil {
		return nil, err
	}
	if err := pathx.ValidateName(name); err != nil {
		return nil, err
	}
	if _, err := s.resolveFolderPath(ctx, s.gate.VisibilityScope(p), folderPath); err != nil {
		return nil, err
	}

	du, ok := s.blobs.(blobstore.DirectUploader)
	if !ok {
		return nil, fmt.Errorf("direct upload: %w", common.ErrNotSupported)
	}

	key := s.newStorageKey(p.ID)
	url, err := du.UploadURL(ctx, key, mimeType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	s.logger.Debug(ctx, "upload ticket issued", "storage_key", key, "folder", folderPath, "name", name)

	return &UploadTicket{StorageKey: key, URL: url}, nil
}

// extension returns the suffix starting at the last dot, ignoring a leading
// dot so ".env" has none.
func extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return ""
	}
	return name[i:]
}

// applyExtensionRule keeps the old extension when newName has none and
// refuses a changed extension unless confirmed.
func applyExtensionRule(oldName, newName string, confirmed bool) (string, error) {
	oldExt := extension(oldName)
	if oldExt == "" {
		return newName, nil
	}
	if !strings.Contains(newName, ".") {
		return newName + oldExt, nil
	}
	if !strings.EqualFold(extension(newName), oldExt) && !confirmed {
		return "", fmt.Errorf("%q -> %q: %w", oldExt, extension(newName), common.ErrExtensionChanged)
	}
	return newName, nil
}

// RenameFile changes only the logical name; the blob is untouched.
func (s *DriveService) RenameFile(ctx context.Context, p models.Principal, fileID, newName string, confirmExtension bool) (*models.File, error) {
	if err := s.gate.Require(p, auth.CapRenameOrMove); err != nil {
		return nil, err
	}
	if err := pathx.ValidateName(newName); err != nil {
		return nil, err
	}
	scope := s.gate.VisibilityScope(p)

	f, err := s.getFile(ctx, scope, fileID)
	if err != nil {
		return nil, err
	}

	name, err := applyExtensionRule(f.Name, newName, confirmExtension)
	if err != nil {
		return nil, err
	}
	if name == f.Name {
		return f, nil
	}

	siblings, err := s.files.ListByFolder(ctx, scope, f.Folder)
	if err != nil {
		return nil, err
	}
	for _, sib := range siblings {
		if sib.Name == name && sib.ID != f.ID {
			return nil, fmt.Errorf("file %q in %q: %w", name, f.Folder, common.ErrDuplicateName)
		}
	}

	if err := s.files.Update(ctx, f.ID, models.FilePatch{Name: &name, OriginalName: &name}); err != nil {
		return nil, fmt.Errorf("rename file: %w", err)
	}

	oldName := f.Name
	f.Name, f.OriginalName = name, name

	s.emit(ctx, p, models.ActionRenameFile, models.TargetFile, oldName,
		map[string]string{"new_name": name, "folder": f.Folder})

	return f, nil
}

// DeleteFile removes the blob and then the record. A blob that cannot be
// removed is logged and the record is deleted anyway.
func (s *DriveService) DeleteFile(ctx context.Context, p models.Principal, fileID string) error {
	if err := s.gate.Require(p, auth.CapDeleteFile); err != nil {
		return err
	}
	scope := s.gate.VisibilityScope(p)

	f, err := s.getFile(ctx, scope, fileID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Warn(ctx, "blob not deleted", "file_id", f.ID, "storage_key", f.StorageKey, "error", err)
	}

	if err := s.files.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	s.emit(ctx, p, models.ActionDeleteFile, models.TargetFile, f.Name,
		map[string]string{"folder": f.Folder})
	return nil
}

// DownloadURL returns a retrieval URL for the file's blob.
func (s *DriveService) DownloadURL(ctx context.Context, p models.Principal, fileID string) (string, error) {
	if err := s.gate.Require(p, auth.CapDownloadFile); err != nil {
		return "", err
	}
	scope := s.gate.VisibilityScope(p)

	f, err := s.getFile(ctx, scope, fileID)
	if err != nil {
		return "", err
	}

	url, err := s.blobs.URL(ctx, f.StorageKey)
	if err != nil {
		return "", err
	}

	s.emit(ctx, p, models.ActionDownloadFile, models.TargetFile, f.Name,
		map[string]string{"folder": f.Folder})
	return url, nil
}
