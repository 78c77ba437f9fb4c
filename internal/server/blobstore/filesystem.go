package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/filex"
)

// FilesystemStore lays blobs out under a root directory using the storage
// key as a relative path.
type FilesystemStore struct {
	root string
}

var _ Store = (*FilesystemStore)(nil)

func NewFilesystemStore(root string) (*FilesystemStore, error) {
	dir, err := filex.EnsureDir(root)
	if err != nil {
		return nil, fmt.Errorf("blob root: %w", err)
	}
	return &FilesystemStore{root: dir}, nil
}

func (s *FilesystemStore) path(key string) (string, error) {
	p, err := filex.SafeJoin(s.root, key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidPath, err)
	}
	return p, nil
}

func mapFSError(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob %s: %w", key, common.ErrNotFound)
	}
	return fmt.Errorf("blob %s: %w: %w", key, common.ErrBlobUnavailable, err)
}

// Put writes to a temporary file in the target directory and renames it
// into place, so readers never observe a partial blob.
func (s *FilesystemStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o770); err != nil {
		return mapFSError(key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return mapFSError(key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return mapFSError(key, err)
	}
	if err := tmp.Close(); err != nil {
		return mapFSError(key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return mapFSError(key, err)
	}
	return nil
}

func (s *FilesystemStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, mapFSError(key, err)
	}
	return f, nil
}

func (s *FilesystemStore) Stat(ctx context.Context, key string) (int64, error) {
	p, err := s.path(key)
	if err != nil {
		return 0, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		return 0, mapFSError(key, err)
	}
	if fi.IsDir() {
		return 0, fmt.Errorf("blob %s: %w", key, common.ErrNotFound)
	}
	return fi.Size(), nil
}

func (s *FilesystemStore) URL(ctx context.Context, key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		return "", mapFSError(key, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String(), nil
}

func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return mapFSError(key, err)
	}
	return nil
}
