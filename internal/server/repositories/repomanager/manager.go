// Package repomanager vends cloud repositories for the configured storage
// backend and runs its schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/geosync/internal/server/repositories/cloud"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Cloud returns a repository outside of any transaction.
	Cloud() cloud.Repository
	// WithinTx runs fn against a repository whose writes commit together.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo cloud.Repository) error) error
	Close() error
}
