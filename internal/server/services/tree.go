package services

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/pathx"
	"github.com/dmitrijs2005/gophdrive/internal/server/auth"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// TreeEntry is one file of a folder upload. RelativePath includes the file
// name, e.g. "photos/2024/a.jpg".
type TreeEntry struct {
	RelativePath string
	MimeType     string
	Size         int64
	Body         io.Reader
}

// UploadTree uploads a directory tree below folderPath. Missing intermediate
// folders are created and existing ones reused. Each entry gets its own
// outcome, keyed by its relative path.
func (s *DriveService) UploadTree(ctx context.Context, p models.Principal, folderPath string, entries []TreeEntry) (*BatchResult, error) {
	if err := s.gate.Require(p, auth.CapCreateFolder, auth.CapUploadFile); err != nil {
		return nil, err
	}
	scope := s.gate.VisibilityScope(p)

	base, err := s.resolveFolderPath(ctx, scope, folderPath)
	if err != nil {
		return nil, err
	}
	basePath := pathx.MustParse(base)

	known := map[string]bool{}
	res := &BatchResult{Items: make([]ItemResult, 0, len(entries))}
	for _, e := range entries {
		it := Item{Kind: KindFile, Name: e.RelativePath}
		if err := ctx.Err(); err != nil {
			res.add(it, 0, err)
			continue
		}
		res.add(it, 0, s.uploadTreeEntry(ctx, p, scope, basePath, e, known))
	}
	return res, nil
}

func (s *DriveService) uploadTreeEntry(ctx context.Context, p models.Principal, scope models.Scope, base pathx.Path, e TreeEntry, known map[string]bool) error {
	rel, err := pathx.Parse(e.RelativePath)
	if err != nil {
		return err
	}
	if rel.IsRoot() {
		return fmt.Errorf("%w: empty relative path", common.ErrInvalidPath)
	}

	dir, err := s.ensureFolders(ctx, p, scope, base, rel.Parent(), known)
	if err != nil {
		return err
	}

	_, err = s.uploadInto(ctx, p, dir, UploadInput{
		Name:     rel.Name(),
		MimeType: e.MimeType,
		Size:     e.Size,
		Body:     e.Body,
	})
	return err
}

// ensureFolders walks rel below base, creating every folder that does not
// exist yet, and returns the full path of the deepest one.
func (s *DriveService) ensureFolders(ctx context.Context, p models.Principal, scope models.Scope, base, rel pathx.Path, known map[string]bool) (string, error) {
	cur := base
	for _, seg := range rel.Segments() {
		next, err := pathx.Join(cur, seg)
		if err != nil {
			return "", err
		}
		if known[next.String()] {
			cur = next
			continue
		}

		existing, err := s.siblingFolderNamed(ctx, scope, cur.String(), seg, "")
		if err != nil {
			return "", err
		}
		if existing == nil {
			f, err := s.createFolderRecord(ctx, p, scope, cur.String(), seg)
			if err != nil {
				return "", err
			}
			s.emit(ctx, p, models.ActionCreateFolder, models.TargetFolder, f.Name,
				map[string]string{"path": f.FullPath()})
		}
		known[next.String()] = true
		cur = next
	}
	return cur.String(), nil
}
