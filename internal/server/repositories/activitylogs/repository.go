// Package activitylogs persists the activity feed.
package activitylogs

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	// ListRecent returns at most limit entries, newest first. A scoped
	// listing only includes entries whose principal is scope.OwnerID.
	ListRecent(ctx context.Context, scope models.Scope, limit int) ([]*models.ActivityLog, error)
}
