package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/gophdrive/internal/server/migrations"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/activitylogs"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories over one
// connection pool and runs the embedded goose migrations.
type PostgresRepositoryManager struct {
	db           *sql.DB
	folders      folders.Repository
	files        files.Repository
	activityLogs activitylogs.Repository
}

func (m *PostgresRepositoryManager) Folders() folders.Repository {
	return m.folders
}

func (m *PostgresRepositoryManager) Files() files.Repository {
	return m.files
}

func (m *PostgresRepositoryManager) ActivityLogs() activitylogs.Repository {
	return m.activityLogs
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// NewPostgresRepositoryManager opens a pgx-backed pool for dsn.
func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return newPostgresRepositoryManager(db), nil
}

func newPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{
		db:           db,
		folders:      folders.NewPostgresRepository(db),
		files:        files.NewPostgresRepository(db),
		activityLogs: activitylogs.NewPostgresRepository(db),
	}
}
