package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/logging"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	mu    sync.Mutex
	err   error
	pings int
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pings++
	return p.err
}

func (p *fakePinger) set(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *fakePinger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pings
}

func TestWatcher_SyncsOnReconnect(t *testing.T) {
	ctx := context.Background()
	s, f := newTestSession()
	s.SetCredentials(&models.User{ID: 1}, "opaque")
	p := &fakePinger{}
	w := NewWatcher(p, s, logging.Discard())

	assert.True(t, w.Check(ctx))
	assert.True(t, s.IsOnline())
	assert.Equal(t, 1, f.runCount())

	assert.True(t, w.Check(ctx))
	assert.Equal(t, 1, f.runCount())

	p.set(errors.New("connection refused"))
	assert.False(t, w.Check(ctx))
	assert.False(t, s.IsOnline())

	p.set(nil)
	assert.True(t, w.Check(ctx))
	assert.Equal(t, 2, f.runCount())
}

func TestWatcher_NoSyncWithoutCredential(t *testing.T) {
	s, f := newTestSession()
	w := NewWatcher(&fakePinger{}, s, logging.Discard())

	assert.True(t, w.Check(context.Background()))
	assert.True(t, s.IsOnline())
	assert.Equal(t, 0, f.runCount())
}

func TestWatcher_RunStopsWithContext(t *testing.T) {
	s, _ := newTestSession()
	p := &fakePinger{}
	w := NewWatcher(p, s, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return p.count() > 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
