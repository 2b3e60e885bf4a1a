package outbox

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/geosync/internal/client/models"
	"github.com/dmitrijs2005/geosync/internal/dbx"
	"github.com/dmitrijs2005/geosync/internal/timex"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, e models.QueueEntry) (int64, error) {
	if e.CreatedAt == "" {
		e.CreatedAt = timex.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_queue (origin_device_code, table_name, record_uuid, operation, json_payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.OriginDeviceCode, string(e.Table), e.RecordUUID, string(e.Operation), e.Payload, e.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue %s[%s]: %w", e.Table, e.RecordUUID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Pending(ctx context.Context, deviceCode string) ([]models.QueueEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.id, q.origin_device_code, q.table_name, q.record_uuid, q.operation, q.json_payload, q.created_at
		FROM sync_queue q
		WHERE NOT EXISTS (
			SELECT 1 FROM sync_ack a
			WHERE a.queue_id = q.id AND a.synced_by_device_code = ? AND a.source_type = ?
		)
		ORDER BY q.id ASC`, deviceCode, string(models.SourceLocal))
	if err != nil {
		return nil, fmt.Errorf("failed to select pending queue: %w", err)
	}
	defer rows.Close()

	var result []models.QueueEntry
	for rows.Next() {
		var (
			e         models.QueueEntry
			table, op string
		)
		if err := rows.Scan(&e.ID, &e.OriginDeviceCode, &table, &e.RecordUUID, &op, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue row: %w", err)
		}
		e.Table = models.Table(table)
		e.Operation = models.Operation(op)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete queue entry %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue`); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}
