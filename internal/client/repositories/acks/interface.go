// Package acks persists the acknowledgment ledger (the sync_ack table): which
// queue entries this device has already processed, per direction.
package acks

import (
	"context"

	"github.com/dmitrijs2005/geosync/internal/client/models"
)

// Repository is bound to one device code at construction.
type Repository interface {
	IsAcked(ctx context.Context, queueID int64, source models.SourceType) (bool, error)
	// Ack is insert-or-ignore.
	Ack(ctx context.Context, queueID int64, source models.SourceType) error
	Count(ctx context.Context, source models.SourceType) (int, error)
	Clear(ctx context.Context) error
}
