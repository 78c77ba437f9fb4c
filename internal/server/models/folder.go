package models

import (
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/pathx"
)

// Folder is a directory record. Its full path is never stored.
type Folder struct {
	ID         string
	Name       string
	ParentPath string
	OwnerID    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullPath joins ParentPath and Name.
func (f *Folder) FullPath() string {
	return pathx.FullPath(f.ParentPath, f.Name)
}

type FolderPatch struct {
	Name       *string
	ParentPath *string
}
