package activitylogs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

func runRepositoryContract(t *testing.T, repo Repository) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, p := range []string{"u1", "u2", "u1"} {
		require.NoError(t, repo.Create(ctx, &models.ActivityLog{
			ID:          string(rune('a' + i)),
			PrincipalID: p,
			Action:      models.ActionCreateFolder,
			TargetKind:  models.TargetFolder,
			TargetName:  "docs",
			Details:     map[string]string{"path": "docs"},
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.ListRecent(ctx, models.AllRecords, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "docs", all[0].Details["path"])

	mine, err := repo.ListRecent(ctx, models.Scope{OwnerID: "u1"}, 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, e := range mine {
		assert.Equal(t, "u1", e.PrincipalID)
	}

	limited, err := repo.ListRecent(ctx, models.AllRecords, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "c", limited[0].ID)
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryContract(t, NewMemoryRepository())
}

func TestBadgerRepository(t *testing.T) {
	db, err := dbx.OpenInMemoryBadger()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runRepositoryContract(t, NewBadgerRepository(db))
}
