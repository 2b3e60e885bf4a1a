// Package outbox persists the local queue of mutations waiting to be pushed
// to the remote (the sync_queue table). Entries are immutable once written.
package outbox

import (
	"context"

	"github.com/dmitrijs2005/geosync/internal/client/models"
)

type Repository interface {
	// Enqueue appends e and returns its id. CreatedAt defaults to now.
	Enqueue(ctx context.Context, e models.QueueEntry) (int64, error)

	// Pending returns entries without a local acknowledgment by deviceCode,
	// oldest first.
	Pending(ctx context.Context, deviceCode string) ([]models.QueueEntry, error)

	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
