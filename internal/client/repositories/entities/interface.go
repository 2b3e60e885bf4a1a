package entities

import (
	"context"

	"github.com/dmitrijs2005/geosync/internal/client/models"
)

// Repository persists countries, states and cities.
//
// Every method takes the target table explicitly; callers must pass a table
// for which models.Table.Valid reports true.
type Repository interface {
	// Save upserts r by uuid, overwriting unconditionally. Missing uuid and
	// last_updated are filled in on r before writing. Returns the uuid.
	Save(ctx context.Context, t models.Table, r *models.Record) (string, error)

	// Get returns a row regardless of deleted_at, or common.ErrNotFound.
	Get(ctx context.Context, t models.Table, uuid string) (*models.Record, error)

	// List returns non-deleted rows ordered by name, with the parent's name.
	List(ctx context.Context, t models.Table) ([]models.RecordView, error)

	// SoftDelete stamps deleted_at and last_updated with at.
	SoftDelete(ctx context.Context, t models.Table, uuid string, at string) error

	// SoftDeleteIfChildless is SoftDelete guarded by the absence of
	// non-deleted children, evaluated in the same statement.
	SoftDeleteIfChildless(ctx context.Context, t models.Table, uuid string, at string) error

	// HasChildren counts non-deleted children of parentUUID in t's child table.
	HasChildren(ctx context.Context, t models.Table, parentUUID string) (bool, error)

	// ApplyRemote upserts r unless the stored row is strictly newer.
	ApplyRemote(ctx context.Context, t models.Table, r models.Record) (bool, error)

	// ApplyRemoteDelete soft-deletes uuid unless the stored row is strictly
	// newer than lastUpdated. Absent rows are left alone.
	ApplyRemoteDelete(ctx context.Context, t models.Table, uuid, deletedAt, lastUpdated string) (bool, error)

	// Clear removes every row of every table.
	Clear(ctx context.Context) error
}
