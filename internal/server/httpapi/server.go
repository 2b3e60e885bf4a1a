// Package httpapi serves the sync contract over REST: the shared queue,
// one save endpoint per table and the full truncate.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/geosync/internal/logging"
	"github.com/dmitrijs2005/geosync/internal/server/models"
	"golang.org/x/sync/errgroup"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Service is the business logic behind the handlers.
type Service interface {
	Save(ctx context.Context, in models.SaveInput) (int64, error)
	Queue(ctx context.Context) ([]models.QueueEntry, error)
	TruncateAll(ctx context.Context, token string) (string, error)
}

type Server struct {
	address string
	suffix  string
	svc     Service
	log     logging.Logger
	http    *http.Server
}

// NewServer builds a server for address. suffix is appended to every
// endpoint name, e.g. ".php".
func NewServer(address, suffix string, svc Service, l logging.Logger) *Server {
	s := &Server{
		address: address,
		suffix:  suffix,
		svc:     svc,
		log:     l.With("module", "http_server"),
	}
	s.http = &http.Server{
		Addr:         address,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// reachability probe; clients send HEAD
	mux.HandleFunc("/{$}", s.handleHealth)

	mux.HandleFunc("GET /api/get_sync_queue"+s.suffix, s.handleQueue)
	for _, t := range models.Tables() {
		mux.HandleFunc("POST /api/save_"+string(t)+s.suffix, s.handleSave(t))
	}
	mux.HandleFunc("POST /api/truncate_all"+s.suffix, s.handleTruncate)

	return chain(mux, s.recoveryMiddleware, s.loggingMiddleware, maxBytesMiddleware(maxBodyBytes))
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
