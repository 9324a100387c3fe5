package notify_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-tui/internal/api"
	"github.com/stackit/stackit-tui/internal/model"
	"github.com/stackit/stackit-tui/internal/notify"
	"github.com/stackit/stackit-tui/tests/testutil"
)

// scriptedSource returns errs in order, then items.
type scriptedSource struct {
	mu    sync.Mutex
	errs  []error
	items []model.Notification
	calls int
	block chan struct{}
}

func (s *scriptedSource) MyNotifications(ctx context.Context) ([]model.Notification, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	var err error
	if len(s.errs) > 0 {
		err = s.errs[0]
		s.errs = s.errs[1:]
	}
	items := append([]model.Notification(nil), s.items...)
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newFetcher(src notify.Source, t *testing.T, cached bool) *notify.Fetcher {
	t.Helper()
	var f *notify.Fetcher
	if cached {
		f = notify.NewFetcher(src, testutil.NewTestStore(t), time.Second)
	} else {
		f = notify.NewFetcher(src, nil, time.Second)
	}
	return f.WithInitialInterval(time.Millisecond)
}

func TestFetch_Success(t *testing.T) {
	src := &scriptedSource{items: sample()}
	f := newFetcher(src, t, false)

	ctx, gen := f.Begin(context.Background())
	res := f.Fetch(ctx, gen)

	require.NoError(t, res.Err)
	assert.Equal(t, gen, res.Generation)
	assert.Len(t, res.Notifications, 3)
	assert.True(t, f.Current(gen))
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	src := &scriptedSource{
		errs: []error{
			&api.Error{Method: http.MethodGet, Path: api.NotificationsPath, Status: http.StatusBadGateway},
			errors.New("connection reset"),
		},
		items: sample(),
	}
	f := newFetcher(src, t, false)

	ctx, gen := f.Begin(context.Background())
	res := f.Fetch(ctx, gen)

	require.NoError(t, res.Err)
	assert.Len(t, res.Notifications, 3)
	assert.Equal(t, 3, src.Calls())
}

func TestFetch_ClientErrorIsPermanent(t *testing.T) {
	src := &scriptedSource{
		errs: []error{
			&api.Error{Method: http.MethodGet, Path: api.NotificationsPath, Status: http.StatusUnauthorized},
		},
	}
	f := newFetcher(src, t, false)

	ctx, gen := f.Begin(context.Background())
	res := f.Fetch(ctx, gen)

	require.Error(t, res.Err)
	assert.True(t, api.IsUnauthorized(res.Err))
	assert.Nil(t, res.Notifications)
	assert.Equal(t, 1, src.Calls())
}

func TestFetch_EmptyList(t *testing.T) {
	f := newFetcher(&scriptedSource{}, t, false)

	ctx, gen := f.Begin(context.Background())
	res := f.Fetch(ctx, gen)

	require.NoError(t, res.Err)
	assert.NotNil(t, res.Notifications)
	assert.Empty(t, res.Notifications)
}

func TestFetch_AssignsMissingIDs(t *testing.T) {
	src := &scriptedSource{items: []model.Notification{
		{Message: "no id"},
		{ID: "7", Message: "has id"},
	}}
	f := newFetcher(src, t, false)

	ctx, gen := f.Begin(context.Background())
	res := f.Fetch(ctx, gen)

	require.NoError(t, res.Err)
	assert.NotEmpty(t, res.Notifications[0].ID)
	assert.Equal(t, "7", res.Notifications[1].ID)
}

func TestBegin_SupersedesPreviousGeneration(t *testing.T) {
	src := &scriptedSource{items: sample(), block: make(chan struct{})}
	f := newFetcher(src, t, false)

	firstCtx, first := f.Begin(context.Background())
	done := make(chan notify.Result, 1)
	go func() { done <- f.Fetch(firstCtx, first) }()

	_, second := f.Begin(context.Background())
	assert.Greater(t, second, first)
	assert.False(t, f.Current(first))
	assert.True(t, f.Current(second))

	select {
	case res := <-done:
		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, context.Canceled)
		assert.Equal(t, first, res.Generation)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}
}

func TestInvalidate(t *testing.T) {
	f := newFetcher(&scriptedSource{}, t, false)
	_, gen := f.Begin(context.Background())
	f.Invalidate()
	assert.False(t, f.Current(gen))
}

func TestFetch_ReadMarksSurviveRefetch(t *testing.T) {
	src := &scriptedSource{items: sample()}
	f := newFetcher(src, t, true)
	ctx := context.Background()

	fctx, gen := f.Begin(ctx)
	res := f.Fetch(fctx, gen)
	require.NoError(t, res.Err)

	var p notify.Panel
	p.Replace(res.Notifications)
	require.NoError(t, f.MarkRead(ctx, p.MarkAllRead()))

	// the server still reports the items unread
	fctx, gen = f.Begin(ctx)
	res = f.Fetch(fctx, gen)
	require.NoError(t, res.Err)
	assert.Equal(t, 0, model.UnreadCount(res.Notifications))

	cached, err := f.Cached(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 3)
	assert.Equal(t, 0, model.UnreadCount(cached))

	require.NoError(t, f.Forget(ctx))
	cached, err = f.Cached(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestCached_NoStore(t *testing.T) {
	f := newFetcher(&scriptedSource{}, t, false)
	cached, err := f.Cached(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cached)
	assert.NoError(t, f.MarkRead(context.Background(), []string{"1"}))
}
