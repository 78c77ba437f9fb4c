// Package models defines the records persisted by the metadata store and
// the value types passed between the service and its adapters.
package models

import "time"

// File is the metadata record of one uploaded blob.
type File struct {
	ID string
	// Name is the display name; OriginalName mirrors it after a rename.
	Name         string
	OriginalName string
	Size         int64
	MimeType     string
	// StorageKey addresses the bytes in the blob store.
	StorageKey string
	// Folder is the full path of the containing folder, "" for the root.
	Folder    string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FilePatch lists the fields an update may change. Nil fields are left as is.
type FilePatch struct {
	Name         *string
	OriginalName *string
	Folder       *string
}
