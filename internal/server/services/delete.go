package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// BulkDelete runs the single-item delete for every item. A non-empty folder
// or a denied item fails on its own and the rest carry on.
func (s *DriveService) BulkDelete(ctx context.Context, p models.Principal, items []Item) *BatchResult {
	res := runBatch(ctx, items, func(it Item) (int, error) {
		switch it.Kind {
		case KindFile:
			return 0, s.DeleteFile(ctx, p, it.ID)
		case KindFolder:
			return 0, s.DeleteFolder(ctx, p, it.ID)
		default:
			return 0, fmt.Errorf("%w: unknown item kind %q", common.ErrInvalidPath, it.Kind)
		}
	})

	s.logger.Info(ctx, "bulk delete finished", "principal_id", p.ID,
		"succeeded", res.Succeeded, "failed", res.Failed)
	return res
}
