// Package server wires the reference sync server: it selects the storage
// backend, runs migrations, sets up the truncate archive and serves the REST
// API until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/geosync/internal/logging"
	"github.com/dmitrijs2005/geosync/internal/server/archive"
	"github.com/dmitrijs2005/geosync/internal/server/config"
	"github.com/dmitrijs2005/geosync/internal/server/httpapi"
	"github.com/dmitrijs2005/geosync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/geosync/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	service *services.CloudService
	server  *httpapi.Server
}

// openPostgres is replaced in tests.
var openPostgres = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
	return repomanager.OpenPostgres(ctx, dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := openStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	arch, err := newArchiver(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("archive init error: %w", err)
	}

	svc := services.NewCloudService(repos, arch, c.ResetToken, logger)
	srv := httpapi.NewServer(c.EndpointAddr, c.EndpointSuffix, svc, logger)

	logger.Info(ctx, "server configured", "storage", c.Storage, "archive", c.S3Bucket != "",
		"truncate_enabled", c.ResetToken != "")

	return &App{config: c, logger: logger, repos: repos, service: svc, server: srv}, nil
}

func openStorage(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.Storage {
	case config.StorageMemory, "":
		return repomanager.NewInMemoryRepositoryManager(), nil
	case config.StoragePostgres:
		return openPostgres(ctx, c.DatabaseDSN)
	}
	return nil, fmt.Errorf("unknown storage %q", c.Storage)
}

func newArchiver(ctx context.Context, c *config.Config) (archive.Archiver, error) {
	if c.S3Bucket == "" {
		return archive.NopArchiver{}, nil
	}
	return archive.NewS3Archiver(ctx, archive.S3Config{
		User:         c.S3RootUser,
		Password:     c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}

	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(ctx, "close storage", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
