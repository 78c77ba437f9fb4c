// Package blobstore is the opaque byte store behind file records. Records
// reference blobs by storage key only.
package blobstore

import (
	"context"
	"fmt"
	"io"
)

// Store reads and writes whole blobs. Errors wrap common.ErrNotFound or
// common.ErrBlobUnavailable.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Stat returns the stored size of the blob.
	Stat(ctx context.Context, key string) (int64, error)
	// URL returns a location the client can fetch the blob from.
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// DirectUploader is implemented by stores that let clients write a blob
// themselves through a presigned URL.
type DirectUploader interface {
	UploadURL(ctx context.Context, key, contentType string) (string, error)
}

// Backend names accepted by NewFromConfig.
const (
	BackendS3         = "s3"
	BackendFilesystem = "filesystem"
	BackendMemory     = "memory"
)

type Options struct {
	Backend string
	Root    string
	S3      S3Options
}

// NewFromConfig builds the store selected by opts.Backend.
func NewFromConfig(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendS3:
		return NewS3Store(ctx, opts.S3)
	case BackendFilesystem:
		return NewFilesystemStore(opts.Root)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", opts.Backend)
	}
}
