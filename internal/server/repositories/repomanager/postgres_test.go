package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/activitylogs"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestPostgresManager_VendsPostgresRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var m RepositoryManager = newPostgresRepositoryManager(db)

	assert.IsType(t, &folders.PostgresRepository{}, m.Folders())
	assert.IsType(t, &files.PostgresRepository{}, m.Files())
	assert.IsType(t, &activitylogs.PostgresRepository{}, m.ActivityLogs())
}

func TestNewPostgresRepositoryManager_OpenError(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) { return nil, errors.New("bad dsn") }
	defer func() { sqlOpen = orig }()

	_, err := NewPostgresRepositoryManager("postgres://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db open error")
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := newPostgresRepositoryManager(db)
	require.NoError(t, m.RunMigrations(context.Background()))
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := newPostgresRepositoryManager(db)
	err := m.RunMigrations(context.Background())
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
