// Package navbar renders the header bar: the brand, the notification bell
// with its dropdown, and the login link or the avatar's user menu.
package navbar

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/stackit/stackit-tui/internal/keys"
	"github.com/stackit/stackit-tui/internal/model"
	"github.com/stackit/stackit-tui/internal/nav"
	"github.com/stackit/stackit-tui/internal/notify"
	"github.com/stackit/stackit-tui/internal/session"
)

// localTimeout bounds the local store calls the navbar makes inline.
const localTimeout = 2 * time.Second

// MenuItem is an entry of the user menu.
type MenuItem int

const (
	MenuProfile MenuItem = iota
	MenuLogout
)

var menuItems = []MenuItem{MenuProfile, MenuLogout}

func (i MenuItem) Label() string {
	switch i {
	case MenuProfile:
		return "Profile"
	case MenuLogout:
		return "Logout"
	default:
		return ""
	}
}

// cachedMsg carries the locally cached list loaded on sign-in.
type cachedMsg struct {
	items []model.Notification
	err   error
}

// readMarkedMsg reports the outcome of persisting read marks.
type readMarkedMsg struct {
	count int
	err   error
}

// Model is the navbar state. It owns the notification panel and the
// exclusive overlay state of the bell and avatar dropdowns.
type Model struct {
	session *session.Store
	fetcher *notify.Fetcher
	keys    *keys.KeyMap

	loggedIn   bool
	panel      notify.Panel
	overlays   Overlays
	menuCursor int
	width      int
}

// New creates a navbar reflecting the session's current state.
func New(s *session.Store, f *notify.Fetcher, k *keys.KeyMap) Model {
	m := Model{
		session: s,
		fetcher: f,
		keys:    k,
		width:   80,
	}
	if s.LoggedIn() {
		m.loggedIn = true
		m.panel.SetLoading()
	}
	return m
}

// Init starts the first fetch when the session is already logged in.
func (m Model) Init() tea.Cmd {
	if !m.loggedIn {
		return nil
	}
	return tea.Batch(m.loadCached(), m.fetch())
}

// LoggedIn reports the session state the navbar is rendering.
func (m Model) LoggedIn() bool {
	return m.loggedIn
}

// Panel returns the notification panel state.
func (m Model) Panel() notify.Panel {
	return m.panel
}

// Overlay returns the open dropdown.
func (m Model) Overlay() Overlay {
	return m.overlays.Open()
}

// SetWidth updates the navbar width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Handles reports whether the navbar wants msg. An open dropdown captures
// every key; otherwise only the navbar's own bindings are taken.
func (m Model) Handles(msg tea.KeyMsg) bool {
	if m.overlays.Any() {
		return true
	}
	return key.Matches(msg, m.keys.Bell, m.keys.Avatar, m.keys.Login)
}

// Refresh starts a new fetch if logged in.
func (m Model) Refresh() (Model, tea.Cmd) {
	if !m.loggedIn {
		return m, nil
	}
	m.panel.SetLoading()
	return m, m.fetch()
}

// Update handles session changes, fetch results and navbar keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case session.Change:
		return m.applySession(msg.LoggedIn)

	case notify.Result:
		if !m.loggedIn || !m.fetcher.Current(msg.Generation) {
			log.Debugf("discarding notifications for stale generation %d", msg.Generation)
			return m, nil
		}
		if msg.Err != nil {
			m.panel.Fail(msg.Err)
			return m, nil
		}
		m.panel.Replace(msg.Notifications)
		return m, nil

	case cachedMsg:
		if msg.err != nil {
			log.Warnf("loading cached notifications: %s", msg.err)
			return m, nil
		}
		if m.loggedIn {
			m.panel.Seed(msg.items)
		}
		return m, nil

	case readMarkedMsg:
		if msg.err != nil {
			log.Errorf("persisting %d read marks: %s", msg.count, msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// applySession moves the navbar to the given session state. Reaching the
// current state again is a no-op, so a Logout's own change notification
// does nothing.
func (m Model) applySession(loggedIn bool) (Model, tea.Cmd) {
	if loggedIn == m.loggedIn {
		return m, nil
	}
	if loggedIn {
		m.loggedIn = true
		m.panel.SetLoading()
		return m, tea.Batch(m.loadCached(), m.fetch())
	}
	m.signOut()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.overlays.Close()
		return m, nil

	case key.Matches(msg, m.keys.Bell):
		// logged out, the panel is empty
		m.overlays.Toggle(OverlayNotifications)
		return m, nil

	case key.Matches(msg, m.keys.Avatar):
		if !m.loggedIn {
			m.overlays.Close()
			return m, nav.To(nav.Login)
		}
		m.overlays.Toggle(OverlayUserMenu)
		m.menuCursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Login):
		if m.loggedIn {
			return m, nil
		}
		m.overlays.Close()
		return m, nav.To(nav.Login)
	}

	switch m.overlays.Open() {
	case OverlayNotifications:
		return m.handleNotificationKeys(msg)
	case OverlayUserMenu:
		return m.handleMenuKeys(msg)
	}
	return m, nil
}

func (m Model) handleNotificationKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.MarkAllRead):
		return m.MarkAllRead()
	case key.Matches(msg, m.keys.Refresh):
		return m.Refresh()
	}
	return m, nil
}

func (m Model) handleMenuKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.menuCursor = (m.menuCursor + 1) % len(menuItems)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.menuCursor--
		if m.menuCursor < 0 {
			m.menuCursor = len(menuItems) - 1
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		switch menuItems[m.menuCursor] {
		case MenuProfile:
			return m.OpenProfile()
		case MenuLogout:
			return m.Logout()
		}
	}
	return m, nil
}

// MarkAllRead marks every notification read and persists the marks in the
// background. Nothing is sent to the server.
func (m Model) MarkAllRead() (Model, tea.Cmd) {
	changed := m.panel.MarkAllRead()
	if len(changed) == 0 {
		return m, nil
	}
	f := m.fetcher
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), localTimeout)
		defer cancel()
		return readMarkedMsg{count: len(changed), err: f.MarkRead(ctx, changed)}
	}
}

// OpenProfile closes the user menu and navigates to the profile page.
func (m Model) OpenProfile() (Model, tea.Cmd) {
	m.overlays.Close()
	return m, nav.To(nav.Profile)
}

// Logout clears the session and navigates home. Everything but the
// navigation happens before it returns; no network call is made.
func (m Model) Logout() (Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), localTimeout)
	defer cancel()

	if err := m.session.Logout(ctx); err != nil {
		log.Errorf("logging out: %s", err)
	}
	m.signOut()
	if err := m.fetcher.Forget(ctx); err != nil {
		log.Warnf("clearing notification cache: %s", err)
	}
	return m, nav.To(nav.Home)
}

// signOut resets the local session and panel state and abandons any
// in-flight fetch.
func (m *Model) signOut() {
	m.loggedIn = false
	m.overlays.Close()
	m.menuCursor = 0
	m.panel.Reset()
	m.fetcher.Invalidate()
}

func (m Model) fetch() tea.Cmd {
	ctx, gen := m.fetcher.Begin(context.Background())
	f := m.fetcher
	return func() tea.Msg {
		return f.Fetch(ctx, gen)
	}
}

func (m Model) loadCached() tea.Cmd {
	f := m.fetcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), localTimeout)
		defer cancel()
		items, err := f.Cached(ctx)
		return cachedMsg{items: items, err: err}
	}
}

// ShowNotifications opens the notification dropdown.
func (m Model) ShowNotifications() Model {
	if !m.overlays.IsOpen(OverlayNotifications) {
		m.overlays.Toggle(OverlayNotifications)
	}
	return m
}

// CloseOverlays closes any open dropdown.
func (m Model) CloseOverlays() Model {
	m.overlays.Close()
	return m
}
