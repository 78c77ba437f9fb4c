// Package common defines sentinel errors and shared constants used across
// gophdrive layers. Callers should use errors.Is / errors.As to match them.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("metadata store unavailable")
	ErrBlobUnavailable  = errors.New("blob store unavailable")
	ErrNotSupported     = errors.New("not supported by this backend")

	// Service-level errors.
	ErrPermissionDenied = errors.New("permission denied")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrFolderNotEmpty   = errors.New("folder not empty")
	ErrInvalidPath      = errors.New("invalid path")
	ErrExtensionChanged = errors.New("extension changed")
	ErrPartialCascade   = errors.New("partial cascade")
	ErrClipboardEmpty   = errors.New("clipboard is empty")
	ErrStorageKeyInUse  = errors.New("storage key already referenced")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// PartialCascadeError reports a rename or move whose own record was updated
// but where some descendants still carry the old path prefix.
//
// The values are enough to re-run the cascade with DriveService.RetryCascade.
type PartialCascadeError struct {
	OwnerID string
	OldPath string
	NewPath string
	Rebased int
	Failed  []string
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("partial cascade %q -> %q: %d rebased, %d failed", e.OldPath, e.NewPath, e.Rebased, len(e.Failed))
}

// Is makes errors.Is(err, ErrPartialCascade) match.
func (e *PartialCascadeError) Is(target error) bool {
	return target == ErrPartialCascade
}
