package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/geosync/internal/server/repositories/cloud"
)

// InMemoryRepositoryManager serves a single process-local repository.
// WithinTx serializes callers; there is no rollback, so fn should do its
// validation before writing.
type InMemoryRepositoryManager struct {
	mu   sync.Mutex
	repo *cloud.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{repo: cloud.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Cloud() cloud.Repository {
	return m.repo
}

func (m *InMemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repo cloud.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.repo)
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
