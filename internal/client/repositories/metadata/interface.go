// Package metadata is a small key/value store in the local database. It holds
// the device code, the last sync time and the last sync report.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyDeviceCode     = "device_code"
	KeyLastSyncAt     = "last_sync_at"
	KeyLastSyncReport = "last_sync_report"
)

// SyncKeys are the keys describing sync history. A full reset removes them
// and keeps the device code.
var SyncKeys = []string{KeyLastSyncAt, KeyLastSyncReport}

type Repository interface {
	// Get returns nil for an absent key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes every given key; absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
