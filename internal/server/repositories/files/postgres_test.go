package files

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
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

var columns = []string{"id", "name", "original_name", "size", "mime_type", "storage_key", "folder", "owner_id", "created_at", "updated_at"}

func TestListByFolder_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)FROM files\s+WHERE folder=\$1 AND \(\$2='' OR owner_id=\$2\)`).
		WithArgs("docs", "").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("1", "a.pdf", "a.pdf", int64(10), "application/pdf", "users/u1/k1", "docs", "u1", now, now))

	got, err := repo.ListByFolder(context.Background(), models.AllRecords, "docs")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].Size)
	assert.Equal(t, "users/u1/k1", got[0].StorageKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM files\s+WHERE \(\$1='' OR owner_id=\$1\)`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("1"))

	_, err := repo.List(context.Background(), models.Scope{OwnerID: "u1"})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestListByOwner_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM files\s+WHERE owner_id=\$1`).
		WithArgs("u1").
		WillReturnError(errors.New("db down"))

	_, err := repo.ListByOwner(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM files WHERE id=\$1`).
		WithArgs("x").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "x")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetByStorageKey(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM files WHERE storage_key=\$1 LIMIT 1`).
		WithArgs("users/u1/k1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("1", "a.pdf", "a.pdf", int64(10), "application/pdf", "users/u1/k1", "docs", "u1", now, now))
	mock.ExpectQuery(`FROM files WHERE storage_key=\$1 LIMIT 1`).
		WithArgs("users/u1/none").
		WillReturnError(sql.ErrNoRows)

	f, err := repo.GetByStorageKey(context.Background(), "users/u1/k1")
	require.NoError(t, err)
	assert.Equal(t, "1", f.ID)

	_, err = repo.GetByStorageKey(context.Background(), "users/u1/none")
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`(?s)^INSERT INTO files \(id, name, original_name, size, mime_type, storage_key, folder, owner_id, created_at, updated_at\)`).
		WithArgs("1", "a.pdf", "a.pdf", int64(10), "application/pdf", "users/u1/k1", "", "u1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.File{
		ID: "1", Name: "a.pdf", OriginalName: "a.pdf", Size: 10, MimeType: "application/pdf",
		StorageKey: "users/u1/k1", OwnerID: "u1", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_RowsAffected(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE files SET\s+name = COALESCE\(\$2, name\),\s+original_name = COALESCE\(\$3, original_name\),\s+folder = COALESCE\(\$4, folder\)`
	name := "b.pdf"

	mock.ExpectExec(q).
		WithArgs("1", "b.pdf", "b.pdf", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), "1", models.FilePatch{Name: &name, OriginalName: &name}))

	mock.ExpectExec(q).
		WithArgs("1", "b.pdf", "b.pdf", nil).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))
	err := repo.Update(context.Background(), "1", models.FilePatch{Name: &name, OriginalName: &name})
	if err == nil || !regexp.MustCompile(`rows affected error: .*rows-err`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM files WHERE id=\$1`).
		WithArgs("1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "1"), common.ErrNotFound)
}
