package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"

	"github.com/dmitrijs2005/geosync/internal/client/client"
	"github.com/dmitrijs2005/geosync/internal/client/migrations"
	"github.com/dmitrijs2005/geosync/internal/client/models"
	"github.com/dmitrijs2005/geosync/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func nopLogger() logging.Logger {
	return logging.NewNopLogger()
}

// fakeClient embeds the interface so unused methods panic if called.
type fakeClient struct {
	client.Client

	mu sync.Mutex

	notConfigured bool
	pingErr       error

	queue    []models.CloudEntry
	fetchErr error

	saveFn func(models.SaveRequest) error
	saves  []models.SaveRequest

	truncateErr error
	truncated   []string

	pings, fetches int
}

func (f *fakeClient) Configured() bool { return !f.notConfigured }
func (f *fakeClient) Close() error     { return nil }

func (f *fakeClient) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeClient) FetchQueue(ctx context.Context) ([]models.CloudEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.queue, f.fetchErr
}

func (f *fakeClient) Save(ctx context.Context, req models.SaveRequest) (*client.SaveResult, error) {
	f.mu.Lock()
	fn := f.saveFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(req); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, req)
	return &client.SaveResult{QueueID: int64(len(f.saves)), Message: "success"}, nil
}

func (f *fakeClient) TruncateAll(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.truncated = append(f.truncated, token)
	return f.truncateErr
}

func (f *fakeClient) savedUUIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.saves))
	for _, s := range f.saves {
		out = append(out, s.UUID)
	}
	return out
}

func cloudEntry(t *testing.T, id int64, table models.Table, op models.Operation, data map[string]any) models.CloudEntry {
	t.Helper()
	raw, err := models.EncodePayload(op, data)
	require.NoError(t, err)
	uuid, _ := data["uuid"].(string)
	return models.CloudEntry{ID: id, Table: string(table), RecordUUID: uuid, Operation: string(op), Payload: json.RawMessage(raw)}
}

func count(t *testing.T, db *sql.DB, q string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(q, args...).Scan(&n))
	return n
}
