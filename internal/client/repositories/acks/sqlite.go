package acks

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/geosync/internal/client/models"
	"github.com/dmitrijs2005/geosync/internal/dbx"
	"github.com/dmitrijs2005/geosync/internal/timex"
)

type SQLiteRepository struct {
	db         dbx.DBTX
	deviceCode string
}

func NewSQLiteRepository(db dbx.DBTX, deviceCode string) *SQLiteRepository {
	return &SQLiteRepository{db: db, deviceCode: deviceCode}
}

func (r *SQLiteRepository) IsAcked(ctx context.Context, queueID int64, source models.SourceType) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sync_ack
		WHERE queue_id = ? AND synced_by_device_code = ? AND source_type = ?`,
		queueID, r.deviceCode, string(source)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check ack %d/%s: %w", queueID, source, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Ack(ctx context.Context, queueID int64, source models.SourceType) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO sync_ack (queue_id, synced_by_device_code, source_type, created_at)
		VALUES (?, ?, ?, ?)`,
		queueID, r.deviceCode, string(source), timex.Now())
	if err != nil {
		return fmt.Errorf("failed to ack %d/%s: %w", queueID, source, err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context, source models.SourceType) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sync_ack WHERE synced_by_device_code = ? AND source_type = ?`,
		r.deviceCode, string(source)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count acks: %w", err)
	}
	return n, nil
}

// Clear removes acknowledgments of every device.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_ack`); err != nil {
		return fmt.Errorf("failed to clear acks: %w", err)
	}
	return nil
}
