package folders

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// PostgresRepository implements folder storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, name, parent_path, owner_id, created_at, updated_at FROM folders`

func (r *PostgresRepository) ListByParent(ctx context.Context, scope models.Scope, parentPath string) ([]*models.Folder, error) {
	query := selectColumns + `
		WHERE parent_path=$1 AND ($2='' OR owner_id=$2)
		ORDER BY name`
	return r.list(ctx, query, parentPath, scope.OwnerID)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	query := selectColumns + `
		WHERE owner_id=$1
		ORDER BY parent_path, name`
	return r.list(ctx, query, ownerID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.StoreError(err)
	}
	defer rows.Close()

	var result []*models.Folder
	for rows.Next() {
		var item models.Folder
		if err := rows.Scan(&item.ID, &item.Name, &item.ParentPath, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, dbx.StoreError(err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StoreError(err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Folder, error) {
	query := selectColumns + ` WHERE id=$1`

	item := &models.Folder{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&item.ID, &item.Name, &item.ParentPath, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, dbx.StoreError(err)
	}
	return item, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.Folder) error {
	query := `INSERT INTO folders (id, name, parent_path, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, f.ID, f.Name, f.ParentPath, f.OwnerID, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return dbx.StoreError(err)
	}
	return nil
}

// Update applies the non-nil fields of patch; nil fields keep their value
// through COALESCE.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.FolderPatch) error {
	query := `UPDATE folders SET
			name = COALESCE($2, name),
			parent_path = COALESCE($3, parent_path),
			updated_at = now()
		WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, id, patch.Name, patch.ParentPath)
	if err != nil {
		return dbx.StoreError(err)
	}
	return dbx.ExpectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id=$1`, id)
	if err != nil {
		return dbx.StoreError(err)
	}
	return dbx.ExpectOneRow(res)
}
