package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/geosync/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_IsOnline(t *testing.T) {
	fc := &fakeClient{}
	g := NewGate(fc, nopLogger())
	ctx := context.Background()

	assert.False(t, g.LastKnown())
	assert.True(t, g.IsOnline(ctx))
	assert.True(t, g.LastKnown())

	fc.mu.Lock()
	fc.pingErr = client.ErrUnavailable
	fc.mu.Unlock()
	assert.False(t, g.IsOnline(ctx))
	assert.False(t, g.LastKnown())
}

func TestGate_NotConfiguredNeverProbes(t *testing.T) {
	fc := &fakeClient{notConfigured: true}
	g := NewGate(fc, nopLogger())

	assert.False(t, g.IsOnline(context.Background()))
	assert.Zero(t, fc.pings)
}

func TestGate_WatchReportsTransitions(t *testing.T) {
	fc := &fakeClient{}
	g := NewGate(fc, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		changes []bool
	)
	onChange := func(online bool) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, online)
	}

	done := make(chan struct{})
	go func() {
		g.Watch(ctx, 5*time.Millisecond, onChange)
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) == 1
	}, time.Second, time.Millisecond)

	fc.mu.Lock()
	fc.pingErr = client.ErrUnavailable
	fc.mu.Unlock()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) == 2
	}, time.Second, time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, changes)
}
