package services

import (
	"context"
	"errors"
	"time"

	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/logging"
)

// Pinger probes backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

const pingTimeout = 3 * time.Second

// Watcher keeps Session.IsOnline in step with backend reachability and runs
// a sync pass whenever the session comes back online.
type Watcher struct {
	pinger  Pinger
	session *Session
	logger  logging.Logger
}

func NewWatcher(pinger Pinger, session *Session, logger logging.Logger) *Watcher {
	return &Watcher{pinger: pinger, session: session, logger: logger}
}

// Run probes every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Check performs a single probe and reports whether the backend answered.
func (w *Watcher) Check(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := w.pinger.Ping(pctx)
	cancel()

	if err != nil {
		if w.session.IsOnline() {
			w.logger.Info(ctx, "backend unreachable, switching to offline", "error", err)
		}
		w.session.SetOnline(false)
		return false
	}

	if !w.session.SetOnline(true) {
		return true
	}
	w.logger.Info(ctx, "backend reachable, switching to online")

	if !w.session.IsAuthenticated() {
		return true
	}
	if _, err := w.session.TriggerSync(ctx); err != nil && !errors.Is(err, common.ErrNetworkUnavailable) {
		w.logger.Warn(ctx, "sync on reconnect failed", "error", err)
	}
	return true
}
