package activitylogs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_EncodesDetails(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`(?s)^INSERT INTO activity_logs`).
		WithArgs("a1", "u1", "alice", models.ActionRenameFolder, models.TargetFolder, "docs",
			[]byte(`{"new_name":"papers"}`), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.ActivityLog{
		ID: "a1", PrincipalID: "u1", PrincipalName: "alice", Action: models.ActionRenameFolder,
		TargetKind: models.TargetFolder, TargetName: "docs", Details: map[string]string{"new_name": "papers"},
		CreatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)FROM activity_logs\s+WHERE \(\$1='' OR principal_id=\$1\)\s+ORDER BY created_at DESC\s+LIMIT \$2`).
		WithArgs("u1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "principal_id", "principal_name", "action", "target_kind", "target_name", "details", "created_at"}).
			AddRow("a1", "u1", "alice", models.ActionUploadFile, models.TargetFile, "a.pdf", []byte(`{"folder":"docs"}`), now))

	got, err := repo.ListRecent(context.Background(), models.Scope{OwnerID: "u1"}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "docs", got[0].Details["folder"])
}

func TestListRecent_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM activity_logs`).WillReturnError(errors.New("db down"))

	_, err := repo.ListRecent(context.Background(), models.AllRecords, 5)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}
