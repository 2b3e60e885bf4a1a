package client

import (
	"context"

	"github.com/dmitrijs2005/geosync/internal/client/models"
)

// Client is the remote side of the sync contract.
type Client interface {
	// FetchQueue returns the remote sync queue in remote order.
	FetchQueue(ctx context.Context) ([]models.CloudEntry, error)
	// Save pushes one change; a nil error means the remote confirmed it.
	Save(ctx context.Context, req models.SaveRequest) (*SaveResult, error)
	// TruncateAll wipes the remote store.
	TruncateAll(ctx context.Context, resetToken string) error
	// Ping succeeds when the remote answers at all.
	Ping(ctx context.Context) error
	Configured() bool
	Close() error
}

// SaveResult is what the remote reported for an accepted save.
type SaveResult struct {
	QueueID int64
	Message string
}
