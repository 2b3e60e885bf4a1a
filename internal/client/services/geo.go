package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/geosync/internal/client/models"
	"github.com/dmitrijs2005/geosync/internal/client/repositories/entities"
	"github.com/dmitrijs2005/geosync/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/geosync/internal/common"
	"github.com/dmitrijs2005/geosync/internal/dbx"
	"github.com/dmitrijs2005/geosync/internal/logging"
	"github.com/dmitrijs2005/geosync/internal/timex"
)

// GeoService is the caller-facing API for geography data.
//
// Every mutation writes the entity and appends the matching outbox entry in
// one transaction: either both land or neither does.
type GeoService interface {
	// Save creates (empty UUID) or overwrites a record and returns its uuid.
	// Name is required; states and cities also require a live parent.
	Save(ctx context.Context, t models.Table, rec models.Record) (string, error)
	// Rename changes only the name of an existing live record.
	Rename(ctx context.Context, t models.Table, uuid, name string) error
	// Delete soft-deletes a record that has no live children.
	Delete(ctx context.Context, t models.Table, uuid string) error
	List(ctx context.Context, t models.Table) ([]models.RecordView, error)
	Get(ctx context.Context, t models.Table, uuid string) (*models.Record, error)
	HasChildren(ctx context.Context, t models.Table, uuid string) (bool, error)
}

type geoService struct {
	db         *sql.DB
	deviceCode string
	log        logging.Logger
}

func NewGeoService(db *sql.DB, deviceCode string, log logging.Logger) GeoService {
	return &geoService{db: db, deviceCode: deviceCode, log: log.With("module", "geo")}
}

func (s *geoService) Save(ctx context.Context, t models.Table, rec models.Record) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownTable, t)
	}
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return "", fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if t.ParentTable() != "" && (rec.ParentUUID == nil || strings.TrimSpace(*rec.ParentUUID) == "") {
		return "", fmt.Errorf("%w: %s requires a %s", common.ErrValidation, t.Singular(), t.ParentTable().Singular())
	}

	rec.LastUpdated = timex.Now()
	rec.DeletedAt = nil

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := entities.NewSQLiteRepository(tx)

		if pt := t.ParentTable(); pt != "" {
			parent, err := repo.Get(ctx, pt, *rec.ParentUUID)
			if errors.Is(err, common.ErrNotFound) || (err == nil && parent.DeletedAt != nil) {
				return fmt.Errorf("%w: unknown %s %s", common.ErrValidation, pt.Singular(), *rec.ParentUUID)
			}
			if err != nil {
				return err
			}
		}

		if _, err := repo.Save(ctx, t, &rec); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, t, models.OpUpsert, rec)
	})
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "record saved", "table", t, "uuid", rec.UUID)
	return rec.UUID, nil
}

func (s *geoService) Rename(ctx context.Context, t models.Table, uuid, name string) error {
	rec, err := s.Get(ctx, t, uuid)
	if err != nil {
		return err
	}
	if rec.DeletedAt != nil {
		return common.ErrNotFound
	}
	rec.Name = name
	_, err = s.Save(ctx, t, *rec)
	return err
}

func (s *geoService) Delete(ctx context.Context, t models.Table, uuid string) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", common.ErrUnknownTable, t)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := entities.NewSQLiteRepository(tx)

		if err := repo.SoftDeleteIfChildless(ctx, t, uuid, timex.Now()); err != nil {
			return err
		}
		rec, err := repo.Get(ctx, t, uuid)
		if err != nil {
			return err
		}
		return s.enqueue(ctx, tx, t, models.OpDelete, *rec)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "record deleted", "table", t, "uuid", uuid)
	return nil
}

func (s *geoService) enqueue(ctx context.Context, tx dbx.DBTX, t models.Table, op models.Operation, rec models.Record) error {
	payload, err := models.EncodePayload(op, rec.ToData(t))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = outbox.NewSQLiteRepository(tx).Enqueue(ctx, models.QueueEntry{
		OriginDeviceCode: s.deviceCode,
		Table:            t,
		RecordUUID:       rec.UUID,
		Operation:        op,
		Payload:          payload,
	})
	return err
}

func (s *geoService) List(ctx context.Context, t models.Table) ([]models.RecordView, error) {
	return entities.NewSQLiteRepository(s.db).List(ctx, t)
}

func (s *geoService) Get(ctx context.Context, t models.Table, uuid string) (*models.Record, error) {
	return entities.NewSQLiteRepository(s.db).Get(ctx, t, uuid)
}

func (s *geoService) HasChildren(ctx context.Context, t models.Table, uuid string) (bool, error) {
	return entities.NewSQLiteRepository(s.db).HasChildren(ctx, t, uuid)
}
