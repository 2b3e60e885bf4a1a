package cloud

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/geosync/internal/server/models"
)

// MemoryRepository keeps the cloud state in process memory. It is safe for
// concurrent use and follows the same rules as PostgresRepository.
type MemoryRepository struct {
	mu     sync.Mutex
	tables map[models.Table]map[string]models.Row
	queue  []models.QueueEntry
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{}
	r.reset()
	return r
}

func (r *MemoryRepository) reset() {
	r.tables = make(map[models.Table]map[string]models.Row, len(models.Tables()))
	for _, t := range models.Tables() {
		r.tables[t] = make(map[string]models.Row)
	}
	r.queue = nil
	r.nextID = 0
}

func (r *MemoryRepository) Upsert(_ context.Context, t models.Table, row models.Row) (bool, error) {
	if err := checkTable(t); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.tables[t][row.UUID]; ok && row.LastUpdated < cur.LastUpdated {
		return false, nil
	}
	r.tables[t][row.UUID] = row
	return true, nil
}

func (r *MemoryRepository) Delete(_ context.Context, t models.Table, uuid, deletedAt, lastUpdated string) (bool, error) {
	if err := checkTable(t); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.tables[t][uuid]
	if !ok || cur.LastUpdated > lastUpdated {
		return false, nil
	}
	cur.DeletedAt = &deletedAt
	cur.LastUpdated = lastUpdated
	r.tables[t][uuid] = cur
	return true, nil
}

func (r *MemoryRepository) AppendQueue(_ context.Context, e *models.QueueEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	e.ID = r.nextID
	r.queue = append(r.queue, *e)
	return e.ID, nil
}

func (r *MemoryRepository) ListQueue(_ context.Context) ([]models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.QueueEntry, len(r.queue))
	copy(out, r.queue)
	return out, nil
}

func (r *MemoryRepository) Rows(_ context.Context, t models.Table) ([]models.Row, error) {
	if err := checkTable(t); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Row, 0, len(r.tables[t]))
	for _, row := range r.tables[t] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UUID < out[j].UUID })
	return out, nil
}

// Truncate also restarts queue ids, like RESTART IDENTITY.
func (r *MemoryRepository) Truncate(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
	return nil
}
