// Package notify loads the signed-in user's notifications and holds the
// dropdown's read/unread state.
package notify

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/stackit/stackit-tui/internal/api"
	"github.com/stackit/stackit-tui/internal/model"
	"github.com/stackit/stackit-tui/internal/store"
)

// Source returns the current user's notifications. *api.Client implements it.
type Source interface {
	MyNotifications(ctx context.Context) ([]model.Notification, error)
}

// Result is the outcome of one fetch generation.
type Result struct {
	Generation    uint64
	Notifications []model.Notification
	Err           error
}

// Fetcher retrieves notifications with retry, keeps a local cache and
// tags every request with a generation so superseded results can be
// dropped.
type Fetcher struct {
	src        Source
	cache      store.Store
	maxElapsed time.Duration

	// initialInterval is the first backoff delay; tests shorten it.
	initialInterval time.Duration

	mu         gosync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewFetcher creates a Fetcher. cache may be nil to disable caching and
// persisted read marks.
func NewFetcher(src Source, cache store.Store, maxElapsed time.Duration) *Fetcher {
	if maxElapsed <= 0 {
		maxElapsed = 10 * time.Second
	}
	return &Fetcher{
		src:             src,
		cache:           cache,
		maxElapsed:      maxElapsed,
		initialInterval: 500 * time.Millisecond,
	}
}

// WithInitialInterval sets the first retry delay.
func (f *Fetcher) WithInitialInterval(d time.Duration) *Fetcher {
	f.initialInterval = d
	return f
}

// Begin starts a new generation, cancelling any request still running for
// an older one. The returned context must be passed to Fetch.
func (f *Fetcher) Begin(parent context.Context) (context.Context, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	f.cancel = cancel
	f.generation++
	return ctx, f.generation
}

// Invalidate abandons the current generation without starting a request.
func (f *Fetcher) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.generation++
}

// Current reports whether gen is still the latest generation.
func (f *Fetcher) Current(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return gen == f.generation
}

// Fetch loads notifications for generation gen. Transport errors and 5xx
// responses are retried with exponential backoff; other API errors are
// returned immediately.
func (f *Fetcher) Fetch(ctx context.Context, gen uint64) Result {
	var items []model.Notification
	operation := func() error {
		got, err := f.src.MyNotifications(ctx)
		if err != nil {
			if apiErr, ok := api.AsError(err); ok && !apiErr.Temporary() {
				return backoff.Permanent(err)
			}
			log.Debugf("notifications fetch attempt failed: %s", err)
			return err
		}
		items = got
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialInterval
	b.MaxElapsedTime = f.maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		log.Errorf("fetching notifications: %s", err)
		return Result{Generation: gen, Err: fmt.Errorf("fetching notifications: %w", err)}
	}

	items = normalize(items)
	f.applyReadMarks(ctx, items)
	f.storeCache(ctx, items)

	return Result{Generation: gen, Notifications: items}
}

// Cached returns the last cached list with persisted read marks applied.
func (f *Fetcher) Cached(ctx context.Context) ([]model.Notification, error) {
	if f.cache == nil {
		return nil, nil
	}
	items, err := f.cache.GetNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cached notifications: %w", err)
	}
	f.applyReadMarks(ctx, items)
	return items, nil
}

// MarkRead persists read marks for ids so they survive the next fetch.
func (f *Fetcher) MarkRead(ctx context.Context, ids []string) error {
	if f.cache == nil || len(ids) == 0 {
		return nil
	}
	return f.cache.MarkNotificationsRead(ctx, ids)
}

// Forget drops the cache and read marks, e.g. after logout.
func (f *Fetcher) Forget(ctx context.Context) error {
	if f.cache == nil {
		return nil
	}
	return f.cache.ClearNotifications(ctx)
}

func (f *Fetcher) applyReadMarks(ctx context.Context, items []model.Notification) {
	if f.cache == nil || len(items) == 0 {
		return
	}
	reads, err := f.cache.GetReadNotificationIDs(ctx)
	if err != nil {
		log.Warnf("loading notification read marks: %s", err)
		return
	}
	for i := range items {
		if reads[items[i].ID] {
			items[i].Read = true
		}
	}
}

func (f *Fetcher) storeCache(ctx context.Context, items []model.Notification) {
	if f.cache == nil {
		return
	}
	if err := f.cache.ReplaceNotifications(ctx, items); err != nil {
		log.Warnf("caching notifications: %s", err)
	}
}

// normalize assigns IDs to records the server sent without one so they
// can be cached and marked read.
func normalize(items []model.Notification) []model.Notification {
	if items == nil {
		return []model.Notification{}
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
	}
	return items
}
