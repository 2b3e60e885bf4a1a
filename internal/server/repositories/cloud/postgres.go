package cloud

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/geosync/internal/dbx"
	"github.com/dmitrijs2005/geosync/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Table names are interpolated into SQL, so only known tables pass.
func checkTable(t models.Table) error {
	_, err := models.ParseTable(string(t))
	return err
}

func (r *PostgresRepository) Upsert(ctx context.Context, t models.Table, row models.Row) (bool, error) {
	if err := checkTable(t); err != nil {
		return false, err
	}

	var (
		query string
		args  []any
	)
	if pc := t.ParentColumn(); pc != "" {
		query = fmt.Sprintf(`
			INSERT INTO %[1]s (uuid, name, %[2]s, last_updated, deleted_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (uuid) DO UPDATE SET
				name = EXCLUDED.name,
				%[2]s = EXCLUDED.%[2]s,
				last_updated = EXCLUDED.last_updated,
				deleted_at = EXCLUDED.deleted_at
			WHERE EXCLUDED.last_updated >= %[1]s.last_updated`, t, pc)
		args = []any{row.UUID, row.Name, row.ParentID, row.LastUpdated, row.DeletedAt}
	} else {
		query = fmt.Sprintf(`
			INSERT INTO %[1]s (uuid, name, last_updated, deleted_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (uuid) DO UPDATE SET
				name = EXCLUDED.name,
				last_updated = EXCLUDED.last_updated,
				deleted_at = EXCLUDED.deleted_at
			WHERE EXCLUDED.last_updated >= %[1]s.last_updated`, t)
		args = []any{row.UUID, row.Name, row.LastUpdated, row.DeletedAt}
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return dbx.Changed(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, t models.Table, uuid, deletedAt, lastUpdated string) (bool, error) {
	if err := checkTable(t); err != nil {
		return false, err
	}

	query := fmt.Sprintf(`UPDATE %s SET deleted_at = $1, last_updated = $2
		WHERE uuid = $3 AND last_updated <= $2`, t)
	res, err := r.db.ExecContext(ctx, query, deletedAt, lastUpdated, uuid)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return dbx.Changed(res)
}

func (r *PostgresRepository) AppendQueue(ctx context.Context, e *models.QueueEntry) (int64, error) {
	query := `
		INSERT INTO sync_queue (origin_device_code, table_name, record_uuid, operation, json_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var origin any
	if e.OriginDeviceCode != "" {
		origin = e.OriginDeviceCode
	}

	err := r.db.QueryRowContext(ctx, query,
		origin, string(e.TableName), e.RecordUUID, string(e.Operation), e.JSONPayload, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to append queue entry: %w", err)
	}
	return e.ID, nil
}

func (r *PostgresRepository) ListQueue(ctx context.Context) ([]models.QueueEntry, error) {
	query := `SELECT id, COALESCE(origin_device_code, ''), table_name, record_uuid, operation, json_payload, created_at
		FROM sync_queue ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select queue: %w", err)
	}
	defer rows.Close()

	result := make([]models.QueueEntry, 0)
	for rows.Next() {
		var e models.QueueEntry
		if err := rows.Scan(&e.ID, &e.OriginDeviceCode, &e.TableName, &e.RecordUUID, &e.Operation, &e.JSONPayload, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Rows(ctx context.Context, t models.Table) ([]models.Row, error) {
	if err := checkTable(t); err != nil {
		return nil, err
	}

	parent := "NULL"
	if pc := t.ParentColumn(); pc != "" {
		parent = pc
	}
	query := fmt.Sprintf(`SELECT uuid, name, %s, last_updated, deleted_at FROM %s ORDER BY uuid ASC`, parent, t)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", t, err)
	}
	defer rows.Close()

	result := make([]models.Row, 0)
	for rows.Next() {
		var (
			row              models.Row
			parentID, deletedAt sql.NullString
		)
		if err := rows.Scan(&row.UUID, &row.Name, &parentID, &row.LastUpdated, &deletedAt); err != nil {
			return nil, err
		}
		if parentID.Valid {
			row.ParentID = &parentID.String
		}
		if deletedAt.Valid {
			row.DeletedAt = &deletedAt.String
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Truncate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `TRUNCATE TABLE sync_queue, cities, states, countries RESTART IDENTITY`)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
