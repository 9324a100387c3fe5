package sync

import (
	"context"
	gosync "sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// defaultInterval is used when a non-positive interval is configured.
const defaultInterval = 300 * time.Millisecond

// readTimeout bounds a single flag read.
const readTimeout = 2 * time.Second

// Syncer re-reads persisted session state. *session.Store implements it.
type Syncer interface {
	Sync(ctx context.Context) (bool, error)
}

// Watcher periodically re-reads the persisted session flag so that
// logins and logouts made by other processes reach this one.
type Watcher struct {
	target   Syncer
	interval time.Duration

	mu      gosync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a Watcher that calls target.Sync every interval.
func NewWatcher(target Syncer, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Watcher{
		target:   target,
		interval: interval,
	}
}

// Start launches the polling goroutine. Calling Start on a running
// Watcher does nothing.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.run(w.stopCh, w.doneCh)
}

// Stop halts polling and waits for the goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
}

// Running reports whether the polling goroutine is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// run is the polling loop.
func (w *Watcher) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check performs a single flag read. Errors leave the state untouched.
func (w *Watcher) check() {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	changed, err := w.target.Sync(ctx)
	if err != nil {
		log.Warnf("session watcher: %s", err)
		return
	}
	if changed {
		log.Debugf("session watcher: persisted flag changed")
	}
}
