// Package cloud stores the server copies of the geography tables and the
// shared sync queue.
package cloud

import (
	"context"

	"github.com/dmitrijs2005/geosync/internal/server/models"
)

// Repository is the row-level API over the cloud store.
//
// Upsert and Delete apply last-writer-wins on last_updated and report
// whether the row changed; a superseded write is not an error.
type Repository interface {
	Upsert(ctx context.Context, t models.Table, row models.Row) (bool, error)
	Delete(ctx context.Context, t models.Table, uuid, deletedAt, lastUpdated string) (bool, error)
	AppendQueue(ctx context.Context, e *models.QueueEntry) (int64, error)
	ListQueue(ctx context.Context) ([]models.QueueEntry, error)
	Rows(ctx context.Context, t models.Table) ([]models.Row, error)
	Truncate(ctx context.Context) error
}
