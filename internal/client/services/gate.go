package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/geosync/internal/client/client"
	"github.com/dmitrijs2005/geosync/internal/logging"
)

// probeTimeout bounds a single reachability probe.
const probeTimeout = 3 * time.Second

// Gate decides whether a sync attempt may proceed: the remote must be
// configured and answer a fresh probe.
type Gate struct {
	client client.Client
	online atomic.Bool
	log    logging.Logger
}

func NewGate(c client.Client, log logging.Logger) *Gate {
	return &Gate{client: c, log: log.With("module", "gate")}
}

// IsOnline probes the remote and caches the result.
func (g *Gate) IsOnline(ctx context.Context) bool {
	if !g.client.Configured() {
		g.online.Store(false)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := g.client.Ping(ctx)
	if err != nil {
		g.log.Debug(ctx, "probe failed", "error", err)
	}
	g.online.Store(err == nil)
	return err == nil
}

// LastKnown returns the result of the latest probe without probing.
func (g *Gate) LastKnown() bool {
	return g.online.Load()
}

// Watch probes every interval until ctx is done and calls onChange on the
// first result and on every online/offline transition.
func (g *Gate) Watch(ctx context.Context, interval time.Duration, onChange func(online bool)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	first := true
	last := false
	check := func() {
		online := g.IsOnline(ctx)
		if first || online != last {
			first = false
			last = online
			if onChange != nil {
				onChange(online)
			}
		}
	}

	check()
	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
