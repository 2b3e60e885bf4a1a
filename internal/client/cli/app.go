package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/dmitrijs2005/geosync/internal/client/client"
	"github.com/dmitrijs2005/geosync/internal/client/config"
	"github.com/dmitrijs2005/geosync/internal/client/services"
	"github.com/dmitrijs2005/geosync/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config     *config.Config
	db         *sql.DB
	remote     client.Client
	gate       *services.Gate
	geo        services.GeoService
	sync       services.SyncService
	deviceCode string

	log       logging.Logger
	logCloser io.Closer

	mu   sync.RWMutex
	mode Mode

	reader      *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewApp opens the local database, resolves the device code and wires the
// remote client, gate and services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, closer := logging.NewFileLogger(c.LogFile, slog.LevelInfo)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		_ = closer.Close()
		return nil, err
	}

	remote := client.NewHTTPClient(c.ServerBaseURL, c.EndpointSuffix, c.RequestTimeout)

	a, err := newApp(ctx, c, db, remote, log)
	if err != nil {
		_ = db.Close()
		_ = closer.Close()
		return nil, err
	}
	a.logCloser = closer
	a.reader = bufio.NewReader(os.Stdin)
	a.out = os.Stdout
	a.interactive = isTerminal(int(os.Stdin.Fd()))
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, remote client.Client, log logging.Logger) (*App, error) {
	code, err := services.ResolveDeviceCode(ctx, db, c.DeviceCode)
	if err != nil {
		log.Error(ctx, "error resolving device code", "error", err)
		return nil, err
	}

	gate := services.NewGate(remote, log)
	mode := ModeOffline
	if !remote.Configured() {
		mode = ModeDisabled
	}

	return &App{
		config:     c,
		db:         db,
		remote:     remote,
		gate:       gate,
		geo:        services.NewGeoService(db, code, log),
		sync:       services.NewSyncService(db, remote, gate, code, c.ResetToken, log),
		deviceCode: code,
		log:        log.With("module", "cli"),
		mode:       mode,
	}, nil
}

// Mode reports the connectivity mode last seen by the watcher.
func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) onStatusChange(online bool) {
	if online {
		a.setMode(ModeOnline)
		return
	}
	a.setMode(ModeOffline)
}

// Run starts the status watcher and blocks in the REPL until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.remote.Configured() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.StartOnlineStatusWatcher(ctx)
		}()
	}

	printlnFn("Welcome to geosync (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.promptWriter())

	cancel()
	wg.Wait()
}

// StartOnlineStatusWatcher probes the remote until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context) {
	a.gate.Watch(ctx, a.config.OnlineCheckInterval, a.onStatusChange)
}

// Close releases the database, the remote client and the log file.
func (a *App) Close() error {
	var errs []error
	if a.remote != nil {
		errs = append(errs, a.remote.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}

func (a *App) promptWriter() io.Writer {
	if !a.interactive || a.out == nil {
		return io.Discard
	}
	return a.out
}
