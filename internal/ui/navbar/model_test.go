package navbar_test

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-tui/internal/keys"
	"github.com/stackit/stackit-tui/internal/model"
	"github.com/stackit/stackit-tui/internal/nav"
	"github.com/stackit/stackit-tui/internal/notify"
	"github.com/stackit/stackit-tui/internal/session"
	"github.com/stackit/stackit-tui/internal/store"
	"github.com/stackit/stackit-tui/internal/ui/navbar"
	"github.com/stackit/stackit-tui/tests/testutil"
)

type fakeSource struct {
	mu    sync.Mutex
	items []model.Notification
	calls int
}

func (f *fakeSource) MyNotifications(context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return append([]model.Notification(nil), f.items...), nil
}

type fixture struct {
	store   *store.SQLiteStore
	session *session.Store
	fetcher *notify.Fetcher
	source  *fakeSource
}

func newFixture(t *testing.T, loggedIn bool) fixture {
	t.Helper()
	s := testutil.NewTestStore(t)
	sess := session.New(session.NewStoreFlags(s))
	if loggedIn {
		require.NoError(t, sess.Login(context.Background()))
	}
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	src := &fakeSource{items: []model.Notification{
		{ID: "1", Message: "New answer", Read: false, Timestamp: ts},
		{ID: "2", Message: "Accepted", Read: true, Timestamp: ts},
		{ID: "3", Message: "Mentioned", Read: false, Timestamp: ts},
	}}
	f := notify.NewFetcher(src, s, time.Second).WithInitialInterval(time.Millisecond)
	return fixture{store: s, session: sess, fetcher: f, source: src}
}

func (fx fixture) navbar() navbar.Model {
	return navbar.New(fx.session, fx.fetcher, keys.DefaultKeyMap())
}

// run executes cmd and everything it produces, feeding messages back into
// m. Navigation messages are collected instead of delivered.
func run(t *testing.T, m navbar.Model, cmd tea.Cmd) (navbar.Model, []nav.Route) {
	t.Helper()
	var routes []nav.Route
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case nav.NavigateMsg:
			routes = append(routes, msg.To)
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m, routes
}

func press(t *testing.T, m navbar.Model, k tea.KeyMsg) (navbar.Model, []nav.Route) {
	t.Helper()
	m, cmd := m.Update(k)
	return run(t, m, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func loggedInNavbar(t *testing.T, fx fixture) navbar.Model {
	t.Helper()
	m := fx.navbar()
	m, routes := run(t, m, m.Init())
	require.Empty(t, routes)
	require.Equal(t, notify.StatusReady, m.Panel().Status())
	return m
}

func TestLogout(t *testing.T) {
	fx := newFixture(t, true)
	m := loggedInNavbar(t, fx)

	m, _ = press(t, m, runes("u"))
	require.Equal(t, navbar.OverlayUserMenu, m.Overlay())

	m, _ = press(t, m, keyDown)
	m, cmd := m.Update(keyEnter)

	// state is already reset before any command runs
	assert.False(t, m.LoggedIn())
	assert.False(t, fx.session.LoggedIn())
	assert.Equal(t, navbar.OverlayNone, m.Overlay())
	assert.Equal(t, notify.StatusSignedOut, m.Panel().Status())
	assert.Empty(t, m.Panel().Items())

	_, ok, err := fx.store.GetSetting(context.Background(), session.FlagKey)
	require.NoError(t, err)
	assert.False(t, ok, "flag should be cleared")

	m, routes := run(t, m, cmd)
	assert.Equal(t, []nav.Route{nav.Home}, routes)

	// the session store's own change notification is a no-op
	m, cmd = m.Update(session.Change{LoggedIn: false})
	_, routes = run(t, m, cmd)
	assert.Empty(t, routes)
}

func TestProfile(t *testing.T) {
	fx := newFixture(t, true)
	m := loggedInNavbar(t, fx)

	m, _ = press(t, m, runes("u"))
	m, routes := press(t, m, keyEnter)

	assert.Equal(t, []nav.Route{nav.Profile}, routes)
	assert.Equal(t, navbar.OverlayNone, m.Overlay())
	assert.True(t, fx.session.LoggedIn())
}

func TestOverlaysAreExclusive(t *testing.T) {
	fx := newFixture(t, true)
	m := loggedInNavbar(t, fx)

	m, _ = press(t, m, runes("b"))
	assert.Equal(t, navbar.OverlayNotifications, m.Overlay())

	m, _ = press(t, m, runes("u"))
	assert.Equal(t, navbar.OverlayUserMenu, m.Overlay())

	m, _ = press(t, m, runes("b"))
	assert.Equal(t, navbar.OverlayNotifications, m.Overlay())

	m, _ = press(t, m, runes("b"))
	assert.Equal(t, navbar.OverlayNone, m.Overlay())

	m, _ = press(t, m, runes("u"))
	m, _ = press(t, m, keyEsc)
	assert.Equal(t, navbar.OverlayNone, m.Overlay())
}

func TestOverlaysToggle(t *testing.T) {
	var o navbar.Overlays
	assert.False(t, o.Any())

	o.Toggle(navbar.OverlayUserMenu)
	assert.True(t, o.IsOpen(navbar.OverlayUserMenu))
	assert.False(t, o.IsOpen(navbar.OverlayNotifications))

	o.Toggle(navbar.OverlayNotifications)
	assert.False(t, o.IsOpen(navbar.OverlayUserMenu))
	assert.True(t, o.IsOpen(navbar.OverlayNotifications))

	o.Close()
	assert.Equal(t, navbar.OverlayNone, o.Open())
}

func TestBadgeAndMarkAllRead(t *testing.T) {
	fx := newFixture(t, true)
	m := loggedInNavbar(t, fx)

	text, shown := m.Panel().Badge()
	assert.True(t, shown)
	assert.Equal(t, "2", text)
	assert.Contains(t, m.View(), "2")

	m, _ = press(t, m, runes("b"))
	m, _ = press(t, m, runes("m"))

	assert.Equal(t, 0, m.Panel().UnreadCount())
	_, shown = m.Panel().Badge()
	assert.False(t, shown)

	reads, err := fx.store.GetReadNotificationIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"1": true, "3": true}, reads)

	// idempotent
	m, cmd := m.Update(runes("m"))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.Panel().UnreadCount())

	// read marks survive a refetch of the same unread items
	m, _ = press(t, m, runes("r"))
	assert.Equal(t, notify.StatusReady, m.Panel().Status())
	assert.Equal(t, 0, m.Panel().UnreadCount())
}

func TestStaleResultIsDiscarded(t *testing.T) {
	fx := newFixture(t, true)
	m := loggedInNavbar(t, fx)

	m, first := m.Refresh()
	m, second := m.Refresh()

	// the superseded request was cancelled and its result is dropped
	m, _ = m.Update(first())
	assert.Equal(t, notify.StatusLoading, m.Panel().Status())

	m, _ = run(t, m, second)
	assert.Equal(t, notify.StatusReady, m.Panel().Status())
}

func TestResultAfterLogoutIsDiscarded(t *testing.T) {
	fx := newFixture(t, true)
	m := loggedInNavbar(t, fx)

	m, pending := m.Refresh()
	m, _ = m.Logout()

	m, _ = m.Update(pending())
	assert.Equal(t, notify.StatusSignedOut, m.Panel().Status())
	assert.Empty(t, m.Panel().Items())
}

func TestSessionChangeTriggersFetch(t *testing.T) {
	fx := newFixture(t, false)
	m := fx.navbar()
	assert.Nil(t, m.Init())
	assert.Equal(t, notify.StatusSignedOut, m.Panel().Status())

	m, cmd := m.Update(session.Change{LoggedIn: true})
	assert.Equal(t, notify.StatusLoading, m.Panel().Status())

	m, _ = run(t, m, cmd)
	assert.True(t, m.LoggedIn())
	assert.Equal(t, notify.StatusReady, m.Panel().Status())
	assert.Len(t, m.Panel().Items(), 3)
	assert.Equal(t, 1, fx.source.calls)

	m, _ = m.Update(session.Change{LoggedIn: false})
	assert.False(t, m.LoggedIn())
	assert.Equal(t, notify.StatusSignedOut, m.Panel().Status())
}

func TestLoggedOut(t *testing.T) {
	fx := newFixture(t, false)
	m := fx.navbar()

	assert.Contains(t, m.View(), "Login")
	assert.Contains(t, m.View(), "🔔")

	m, _ = press(t, m, runes("b"))
	assert.Equal(t, navbar.OverlayNotifications, m.Overlay())
	assert.Contains(t, m.Dropdown(), "No notifications")
	assert.Equal(t, notify.StatusSignedOut, m.Panel().Status())

	m, _ = press(t, m, runes("b"))
	assert.Equal(t, navbar.OverlayNone, m.Overlay())

	m, routes := press(t, m, runes("u"))
	assert.Equal(t, []nav.Route{nav.Login}, routes)

	_, routes = press(t, m, runes("l"))
	assert.Equal(t, []nav.Route{nav.Login}, routes)
}

func TestHandles(t *testing.T) {
	fx := newFixture(t, true)
	m := loggedInNavbar(t, fx)

	assert.True(t, m.Handles(runes("b")))
	assert.False(t, m.Handles(runes("x")))

	m, _ = press(t, m, runes("b"))
	assert.True(t, m.Handles(runes("x")))
	assert.Contains(t, m.Dropdown(), "Notifications")
}
