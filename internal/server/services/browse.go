package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

type Listing struct {
	Path    string
	Folders []*models.Folder
	Files   []*models.File
}

// ListFolder returns the direct children of path visible to p.
func (s *DriveService) ListFolder(ctx context.Context, p models.Principal, path string) (*Listing, error) {
	scope := s.gate.VisibilityScope(p)

	folder, err := s.resolveFolderPath(ctx, scope, path)
	if err != nil {
		return nil, err
	}

	folders, err := s.folders.ListByParent(ctx, scope, folder)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByFolder(ctx, scope, folder)
	if err != nil {
		return nil, err
	}
	return &Listing{Path: folder, Folders: folders, Files: files}, nil
}

// SearchFilter narrows Search. Zero values do not filter.
type SearchFilter struct {
	// Term matches file names case-insensitively.
	Term string
	// MimeType matches as a prefix, so "image/" finds every image.
	MimeType   string
	UploaderID string
	From       time.Time
	To         time.Time
	MinSize    int64
	MaxSize    int64
}

func (f SearchFilter) match(file *models.File) bool {
	if f.Term != "" && !strings.Contains(strings.ToLower(file.Name), strings.ToLower(f.Term)) {
		return false
	}
	if f.MimeType != "" && !strings.HasPrefix(file.MimeType, f.MimeType) {
		return false
	}
	if f.UploaderID != "" && file.OwnerID != f.UploaderID {
		return false
	}
	if !f.From.IsZero() && file.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && file.CreatedAt.After(f.To) {
		return false
	}
	if f.MinSize > 0 && file.Size < f.MinSize {
		return false
	}
	if f.MaxSize > 0 && file.Size > f.MaxSize {
		return false
	}
	return true
}

// Search filters every file visible to p.
func (s *DriveService) Search(ctx context.Context, p models.Principal, filter SearchFilter) ([]*models.File, error) {
	all, err := s.files.List(ctx, s.gate.VisibilityScope(p))
	if err != nil {
		return nil, err
	}

	out := make([]*models.File, 0, len(all))
	for _, f := range all {
		if filter.match(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// RecentActivity returns the newest activity entries visible to p.
func (s *DriveService) RecentActivity(ctx context.Context, p models.Principal, limit int) ([]*models.ActivityLog, error) {
	switch {
	case limit <= 0:
		limit = defaultActivityLimit
	case limit > maxActivityLimit:
		limit = maxActivityLimit
	}
	return s.activityLogs.ListRecent(ctx, s.gate.VisibilityScope(p), limit)
}
