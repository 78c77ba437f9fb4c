package activitylogs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.ActivityLog) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}

	query := `INSERT INTO activity_logs (id, principal_id, principal_name, action, target_kind, target_name, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.PrincipalID, e.PrincipalName, e.Action, e.TargetKind, e.TargetName, details, e.CreatedAt)
	if err != nil {
		return dbx.StoreError(err)
	}
	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, scope models.Scope, limit int) ([]*models.ActivityLog, error) {
	query := `SELECT id, principal_id, principal_name, action, target_kind, target_name, details, created_at
		FROM activity_logs
		WHERE ($1='' OR principal_id=$1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, scope.OwnerID, limit)
	if err != nil {
		return nil, dbx.StoreError(err)
	}
	defer rows.Close()

	var result []*models.ActivityLog
	for rows.Next() {
		var (
			item    models.ActivityLog
			details []byte
		)
		if err := rows.Scan(&item.ID, &item.PrincipalID, &item.PrincipalName, &item.Action,
			&item.TargetKind, &item.TargetName, &details, &item.CreatedAt); err != nil {
			return nil, dbx.StoreError(err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &item.Details); err != nil {
				return nil, fmt.Errorf("decode details of %s: %w", item.ID, err)
			}
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.StoreError(err)
	}
	return result, nil
}
