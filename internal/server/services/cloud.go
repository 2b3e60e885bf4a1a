// Package services contains the reference server's business logic: accepting
// client mutations into the shared queue, serving the queue, and the full
// reset.
package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"maps"
	"strings"

	"github.com/dmitrijs2005/geosync/internal/common"
	"github.com/dmitrijs2005/geosync/internal/logging"
	"github.com/dmitrijs2005/geosync/internal/server/archive"
	"github.com/dmitrijs2005/geosync/internal/server/models"
	"github.com/dmitrijs2005/geosync/internal/server/repositories/cloud"
	"github.com/dmitrijs2005/geosync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/geosync/internal/timex"
)

// CloudService applies client mutations to the cloud tables and records
// every accepted mutation in the sync queue, superseded ones included, so
// all devices see the same history.
type CloudService struct {
	repos      repomanager.RepositoryManager
	archiver   archive.Archiver
	resetToken string
	log        logging.Logger
}

// NewCloudService wires the service. An empty resetToken disables TruncateAll.
func NewCloudService(m repomanager.RepositoryManager, a archive.Archiver, resetToken string, log logging.Logger) *CloudService {
	if a == nil {
		a = archive.NopArchiver{}
	}
	return &CloudService{
		repos:      m,
		archiver:   a,
		resetToken: resetToken,
		log:        log.With("module", "cloud_service"),
	}
}

// Save validates in, applies it with last-writer-wins and appends it to the
// queue in one transaction. It returns the new queue id.
func (s *CloudService) Save(ctx context.Context, in models.SaveInput) (int64, error) {
	t, err := models.ParseTable(string(in.Table))
	if err != nil {
		return 0, err
	}
	op, err := models.ParseOperation(string(in.Operation))
	if err != nil {
		return 0, err
	}

	data := make(map[string]any, len(in.Data)+2)
	maps.Copy(data, in.Data)

	row := models.RowFromData(t, in.UUID, data)
	if row.UUID == "" {
		return 0, fmt.Errorf("%w: uuid is required", common.ErrValidation)
	}
	if op == models.OpUpsert && row.Name == "" {
		return 0, fmt.Errorf("%w: name is required", common.ErrValidation)
	}

	row.LastUpdated = stampOrNow(row.LastUpdated)
	data["uuid"] = row.UUID
	data["last_updated"] = row.LastUpdated

	var deletedAt string
	if op == models.OpDelete {
		deletedAt = row.LastUpdated
		if row.DeletedAt != nil {
			deletedAt = stampOrNow(*row.DeletedAt)
		}
		data["deleted_at"] = deletedAt
	}

	payload, err := models.EncodePayload(op, data)
	if err != nil {
		return 0, err
	}
	entry := &models.QueueEntry{
		OriginDeviceCode: strings.TrimSpace(in.DeviceCode),
		TableName:        t,
		RecordUUID:       row.UUID,
		Operation:        op,
		JSONPayload:      payload,
		CreatedAt:        timex.Now(),
	}

	var applied bool
	err = s.repos.WithinTx(ctx, func(ctx context.Context, repo cloud.Repository) error {
		var err error
		if op == models.OpDelete {
			applied, err = repo.Delete(ctx, t, row.UUID, deletedAt, row.LastUpdated)
		} else {
			applied, err = repo.Upsert(ctx, t, row)
		}
		if err != nil {
			return err
		}
		_, err = repo.AppendQueue(ctx, entry)
		return err
	})
	if err != nil {
		s.log.Error(ctx, "save failed", "table", t, "uuid", row.UUID, "operation", op, "error", err)
		return 0, err
	}

	s.log.Info(ctx, "mutation queued", "table", t, "uuid", row.UUID, "operation", op,
		"queue_id", entry.ID, "applied", applied)
	return entry.ID, nil
}

func stampOrNow(s string) string {
	if strings.TrimSpace(s) == "" {
		return timex.Now()
	}
	return timex.Normalize(s)
}

// Queue returns the whole sync queue in id order.
func (s *CloudService) Queue(ctx context.Context) ([]models.QueueEntry, error) {
	return s.repos.Cloud().ListQueue(ctx)
}

// Snapshot reads every table and the queue in one transaction.
func (s *CloudService) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		TakenAt: timex.Now(),
		Tables:  make(map[models.Table][]models.Row, len(models.Tables())),
	}
	err := s.repos.WithinTx(ctx, func(ctx context.Context, repo cloud.Repository) error {
		for _, t := range models.Tables() {
			rows, err := repo.Rows(ctx, t)
			if err != nil {
				return err
			}
			snap.Tables[t] = rows
		}
		q, err := repo.ListQueue(ctx)
		if err != nil {
			return err
		}
		snap.Queue = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// TruncateAll archives a snapshot and then empties the tables and the queue.
// A failed archive leaves the data in place. It returns the archive key,
// which is empty when archiving is disabled.
func (s *CloudService) TruncateAll(ctx context.Context, token string) (string, error) {
	if s.resetToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.resetToken)) != 1 {
		s.log.Warn(ctx, "truncate rejected")
		return "", common.ErrUnauthorized
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	key, err := s.archiver.Archive(ctx, snap)
	if err != nil {
		s.log.Error(ctx, "archive failed", "error", err)
		return "", fmt.Errorf("archive: %w", err)
	}

	err = s.repos.WithinTx(ctx, func(ctx context.Context, repo cloud.Repository) error {
		return repo.Truncate(ctx)
	})
	if err != nil {
		return "", err
	}

	s.log.Warn(ctx, "cloud truncated", "archive_key", key, "queue_entries", len(snap.Queue))
	return key, nil
}
