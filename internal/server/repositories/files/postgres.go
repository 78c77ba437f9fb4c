package files

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// PostgresRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, name, original_name, size, mime_type, storage_key, folder, owner_id, created_at, updated_at FROM files`

// ListByFolder returns the direct file children of folderPath within scope.
func (r *PostgresRepository) ListByFolder(ctx context.Context, scope models.Scope, folderPath string) ([]*models.File, error) {
	query := selectColumns + `
		WHERE folder=$1 AND ($2='' OR owner_id=$2)
		ORDER BY name`
	return r.list(ctx, query, folderPath, scope.OwnerID)
}

// ListByOwner returns every file of ownerID regardless of folder.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	query := selectColumns + `
		WHERE owner_id=$1
		ORDER BY folder, name`
	return r.list(ctx, query, ownerID)
}

// List returns every file visible in scope, newest first.
func (r *PostgresRepository) List(ctx context.Context, scope models.Scope) ([]*models.File, error) {
	query := selectColumns + `
		WHERE ($1='' OR owner_id=$1)
		ORDER BY created_at DESC`
	return r.list(ctx, query, scope.OwnerID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.StoreError(err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		item, err := scanFile(rows)
		if err != nil {
			return nil, dbx.StoreError(err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StoreError(err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	var item models.File
	err := s.Scan(&item.ID, &item.Name, &item.OriginalName, &item.Size, &item.MimeType,
		&item.StorageKey, &item.Folder, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Get returns the file with the given id or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.File, error) {
	item, err := scanFile(r.db.QueryRowContext(ctx, selectColumns+` WHERE id=$1`, id))
	if err != nil {
		return nil, dbx.StoreError(err)
	}
	return item, nil
}

func (r *PostgresRepository) GetByStorageKey(ctx context.Context, key string) (*models.File, error) {
	item, err := scanFile(r.db.QueryRowContext(ctx, selectColumns+` WHERE storage_key=$1 LIMIT 1`, key))
	if err != nil {
		return nil, dbx.StoreError(err)
	}
	return item, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.File) error {
	query := `INSERT INTO files (id, name, original_name, size, mime_type, storage_key, folder, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.Name, f.OriginalName, f.Size, f.MimeType, f.StorageKey, f.Folder, f.OwnerID, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return dbx.StoreError(err)
	}
	return nil
}

// Update changes name, original_name and folder; exactly one row must match.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.FilePatch) error {
	query := `UPDATE files SET
			name = COALESCE($2, name),
			original_name = COALESCE($3, original_name),
			folder = COALESCE($4, folder),
			updated_at = now()
		WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, id, patch.Name, patch.OriginalName, patch.Folder)
	if err != nil {
		return dbx.StoreError(err)
	}
	return dbx.ExpectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id=$1`, id)
	if err != nil {
		return dbx.StoreError(err)
	}
	return dbx.ExpectOneRow(res)
}
