package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/geosync/internal/client/client"
	"github.com/dmitrijs2005/geosync/internal/client/fieldmap"
	"github.com/dmitrijs2005/geosync/internal/client/models"
	"github.com/dmitrijs2005/geosync/internal/client/repositories/acks"
	"github.com/dmitrijs2005/geosync/internal/client/repositories/entities"
	"github.com/dmitrijs2005/geosync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/geosync/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/geosync/internal/common"
	"github.com/dmitrijs2005/geosync/internal/dbx"
	"github.com/dmitrijs2005/geosync/internal/logging"
	"github.com/dmitrijs2005/geosync/internal/timex"
)

// SyncService runs sync cycles against the remote.
//
// A cycle pulls the remote queue and applies unacknowledged entries locally,
// then pushes pending outbox entries one by one. Failed entries are left in
// place and retried by the next cycle; nothing is retried within a cycle.
type SyncService interface {
	// SyncNow runs one cycle without consulting the gate.
	SyncNow(ctx context.Context) (*models.SyncReport, error)
	// TrySync runs a cycle only when the gate is open, else ErrOffline.
	TrySync(ctx context.Context) (*models.SyncReport, error)
	// ResetAll truncates the remote and, on success, every local table.
	ResetAll(ctx context.Context) error
	Status(ctx context.Context) (*Status, error)
	InProgress() bool
}

// Status is a snapshot for display.
type Status struct {
	DeviceCode string
	Online     bool
	InProgress bool
	Pending    int
	LastSyncAt string
	LastReport *models.SyncReport
}

type syncService struct {
	db         *sql.DB
	client     client.Client
	gate       *Gate
	deviceCode string
	resetToken string
	log        logging.Logger

	mu      sync.Mutex
	running atomic.Bool
	now     func() time.Time
}

func NewSyncService(db *sql.DB, c client.Client, gate *Gate, deviceCode, resetToken string, log logging.Logger) SyncService {
	return &syncService{
		db:         db,
		client:     c,
		gate:       gate,
		deviceCode: deviceCode,
		resetToken: resetToken,
		log:        log.With("module", "sync", "device", deviceCode),
		now:        time.Now,
	}
}

func (s *syncService) InProgress() bool {
	return s.running.Load()
}

func (s *syncService) acquire() (func(), error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	s.running.Store(true)
	return func() {
		s.running.Store(false)
		s.mu.Unlock()
	}, nil
}

func (s *syncService) TrySync(ctx context.Context) (*models.SyncReport, error) {
	if s.InProgress() {
		return nil, ErrSyncInProgress
	}
	if !s.gate.IsOnline(ctx) {
		return nil, ErrOffline
	}
	return s.SyncNow(ctx)
}

func (s *syncService) SyncNow(ctx context.Context) (*models.SyncReport, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	report := &models.SyncReport{StartedAt: s.now().UTC()}

	s.pull(ctx, report)
	pushErr := s.push(ctx, report)

	report.FinishedAt = s.now().UTC()
	s.saveReport(ctx, report)

	s.log.Info(ctx, "sync finished",
		"pulled", report.Pulled, "applied", report.Applied, "already_acked", report.AlreadyAcked,
		"pull_failures", report.PullFailures, "pushed", report.Pushed, "push_failures", report.PushFailures)

	if pushErr != nil {
		return report, pushErr
	}
	return report, nil
}

// pull is Phase 1. A fetch failure is recorded and the cycle continues.
func (s *syncService) pull(ctx context.Context, report *models.SyncReport) {
	entries, err := s.client.FetchQueue(ctx)
	if err != nil {
		report.PullError = err.Error()
		s.log.Warn(ctx, "fetch remote queue failed", "error", err)
		return
	}
	report.Pulled = len(entries)

	ledger := acks.NewSQLiteRepository(s.db, s.deviceCode)

	for _, e := range entries {
		if e.Invalid != nil {
			report.PullFailures++
			s.log.Error(ctx, "skipping malformed remote entry", "error", e.Invalid)
			continue
		}

		log := s.log.With("queue_id", e.ID, "table", e.Table, "uuid", e.RecordUUID, "operation", e.Operation)

		acked, err := ledger.IsAcked(ctx, e.ID, models.SourceCloud)
		if err != nil {
			report.PullFailures++
			log.Error(ctx, "ack lookup failed", "error", err)
			continue
		}
		if acked {
			report.AlreadyAcked++
			continue
		}

		var applied bool
		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			var err error
			if applied, err = applyCloudEntry(ctx, entities.NewSQLiteRepository(tx), e); err != nil {
				return err
			}
			return acks.NewSQLiteRepository(tx, s.deviceCode).Ack(ctx, e.ID, models.SourceCloud)
		})
		if errors.Is(err, errMissingUUID) {
			// can never apply, ack so it is reported once
			report.PullFailures++
			log.Error(ctx, "skipping remote entry", "error", err)
			if err := ledger.Ack(ctx, e.ID, models.SourceCloud); err != nil {
				log.Error(ctx, "ack skipped entry failed", "error", err)
			}
			continue
		}
		if err != nil {
			report.PullFailures++
			log.Error(ctx, "apply remote entry failed", "error", err)
			continue
		}

		report.Applied++
		if !applied {
			log.Debug(ctx, "remote entry superseded by newer local row")
		}
	}
}

// applyCloudEntry writes one remote queue entry through last-writer-wins.
// It reports whether the local row changed.
func applyCloudEntry(ctx context.Context, repo entities.Repository, e models.CloudEntry) (bool, error) {
	t := models.Table(e.Table)
	if !t.Valid() {
		return false, fmt.Errorf("%w: %q", common.ErrUnknownTable, e.Table)
	}

	p, err := decodeQueuedPayload(e.Payload)
	if err != nil {
		return false, err
	}

	op, err := resolveOperation(e.Operation, p.Operation)
	if err != nil {
		return false, err
	}

	data := fieldmap.ToLocal(t, p.Data)
	rec := models.RecordFromData(t, data)
	if rec.UUID == "" {
		rec.UUID = strings.TrimSpace(e.RecordUUID)
	}
	if rec.UUID == "" {
		return false, errMissingUUID
	}

	rec.LastUpdated = stampOrNow(rec.LastUpdated)
	if rec.DeletedAt != nil {
		v := timex.Normalize(*rec.DeletedAt)
		rec.DeletedAt = &v
	}

	if op == models.OpDelete {
		deletedAt := timex.Now()
		if rec.DeletedAt != nil {
			deletedAt = *rec.DeletedAt
		}
		return repo.ApplyRemoteDelete(ctx, t, rec.UUID, deletedAt, rec.LastUpdated)
	}
	return repo.ApplyRemote(ctx, t, rec)
}

// push is Phase 2. Only a local storage failure while listing the outbox is
// returned; per-entry failures are counted and retried next cycle.
func (s *syncService) push(ctx context.Context, report *models.SyncReport) error {
	pending, err := outbox.NewSQLiteRepository(s.db).Pending(ctx, s.deviceCode)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}

	for _, e := range pending {
		log := s.log.With("queue_id", e.ID, "table", e.Table, "uuid", e.RecordUUID, "operation", e.Operation)

		req, err := buildSaveRequest(e)
		if err != nil {
			report.PushFailures++
			log.Error(ctx, "skip upload", "error", err)
			continue
		}

		if _, err := s.client.Save(ctx, req); err != nil {
			report.PushFailures++
			log.Warn(ctx, "upload failed", "error", err)
			continue
		}

		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			if err := acks.NewSQLiteRepository(tx, s.deviceCode).Ack(ctx, e.ID, models.SourceLocal); err != nil {
				return err
			}
			return outbox.NewSQLiteRepository(tx).Delete(ctx, e.ID)
		})
		if err != nil {
			report.PushFailures++
			log.Error(ctx, "commit upload failed", "error", err)
			continue
		}

		report.Pushed++
		log.Debug(ctx, "uploaded")
	}
	return nil
}

func buildSaveRequest(e models.QueueEntry) (models.SaveRequest, error) {
	if !e.Table.Valid() {
		return models.SaveRequest{}, fmt.Errorf("%w: %q", common.ErrUnknownTable, e.Table)
	}

	p, err := decodeQueuedPayload([]byte(e.Payload))
	if err != nil {
		return models.SaveRequest{}, err
	}

	op, err := resolveOperation(string(e.Operation), p.Operation)
	if err != nil {
		return models.SaveRequest{}, err
	}

	data := make(map[string]any, len(p.Data)+1)
	for k, v := range p.Data {
		data[k] = v
	}
	if lu, _ := data["last_updated"].(string); strings.TrimSpace(lu) == "" {
		data["last_updated"] = timex.Now()
	}
	data = fieldmap.ToRemote(e.Table, data)

	uuid, _ := data["uuid"].(string)
	if strings.TrimSpace(uuid) == "" {
		uuid = e.RecordUUID
	}
	if strings.TrimSpace(uuid) == "" {
		return models.SaveRequest{}, fmt.Errorf("%w: empty uuid", common.ErrValidation)
	}

	return models.SaveRequest{Table: e.Table, Operation: op, UUID: uuid, Data: data, DeviceCode: e.OriginDeviceCode}, nil
}

// decodeQueuedPayload treats an absent payload as an empty object.
func decodeQueuedPayload(raw []byte) (models.Payload, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return models.Payload{Data: map[string]any{}}, nil
	}
	return models.DecodePayload(raw)
}

// resolveOperation prefers the row's operation, then the payload's, then UPSERT.
func resolveOperation(row string, payload models.Operation) (models.Operation, error) {
	op, err := models.ParseOperation(row)
	if err != nil {
		return "", err
	}
	if op == "" {
		op = payload
	}
	if op == "" {
		op = models.OpUpsert
	}
	return op, nil
}

func stampOrNow(s string) string {
	if strings.TrimSpace(s) == "" {
		return timex.Now()
	}
	return timex.Normalize(s)
}

func (s *syncService) saveReport(ctx context.Context, report *models.SyncReport) {
	repo := metadata.NewSQLiteRepository(s.db)
	if err := metadata.SetString(ctx, repo, metadata.KeyLastSyncAt, timex.Format(report.FinishedAt)); err != nil {
		s.log.Warn(ctx, "store last sync time failed", "error", err)
	}
	if err := metadata.SetJSON(ctx, repo, metadata.KeyLastSyncReport, report); err != nil {
		s.log.Warn(ctx, "store sync report failed", "error", err)
	}
}

func (s *syncService) ResetAll(ctx context.Context) error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	if !s.gate.IsOnline(ctx) {
		return ErrOffline
	}

	if err := s.client.TruncateAll(ctx, s.resetToken); err != nil {
		s.log.Error(ctx, "cloud truncate failed", "error", err)
		return fmt.Errorf("truncate cloud: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := entities.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		if err := outbox.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		if err := acks.NewSQLiteRepository(tx, s.deviceCode).Clear(ctx); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Delete(ctx, metadata.SyncKeys...)
	})
	if err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}

	s.log.Warn(ctx, "all data reset")
	return nil
}

func (s *syncService) Status(ctx context.Context) (*Status, error) {
	pending, err := outbox.NewSQLiteRepository(s.db).Count(ctx)
	if err != nil {
		return nil, err
	}

	md := metadata.NewSQLiteRepository(s.db)
	lastAt, err := metadata.GetString(ctx, md, metadata.KeyLastSyncAt)
	if err != nil {
		return nil, err
	}

	st := &Status{
		DeviceCode: s.deviceCode,
		Online:     s.gate.LastKnown(),
		InProgress: s.InProgress(),
		Pending:    pending,
		LastSyncAt: lastAt,
	}

	var report models.SyncReport
	ok, err := metadata.GetJSON(ctx, md, metadata.KeyLastSyncReport, &report)
	if err != nil {
		s.log.Warn(ctx, "read sync report failed", "error", err)
	}
	if ok {
		st.LastReport = &report
	}
	return st, nil
}
