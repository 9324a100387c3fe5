package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/stackit/stackit-tui/internal/keys"
	"github.com/stackit/stackit-tui/internal/nav"
	"github.com/stackit/stackit-tui/internal/notify"
	"github.com/stackit/stackit-tui/internal/session"
	appsync "github.com/stackit/stackit-tui/internal/sync"
	"github.com/stackit/stackit-tui/internal/ui"
	"github.com/stackit/stackit-tui/internal/ui/command"
	helpview "github.com/stackit/stackit-tui/internal/ui/help"
	"github.com/stackit/stackit-tui/internal/ui/navbar"
	"github.com/stackit/stackit-tui/internal/ui/pages"
	"github.com/stackit/stackit-tui/internal/ui/signup"
)

// Deps are the services the UI runs against.
type Deps struct {
	Session *session.Store
	Fetcher *notify.Fetcher
	Signup  signup.Submitter

	// Watcher is optional; without it only in-process session changes
	// are seen.
	Watcher *appsync.Watcher
}

// Model is the root Bubble Tea model. It owns the navbar, routes between
// pages and hosts the help and command overlays.
type Model struct {
	keys    *keys.KeyMap
	layout  ui.Layout
	session *session.Store
	watcher *appsync.Watcher

	changes     <-chan session.Change
	unsubscribe func()

	history nav.History
	route   nav.Route

	navbar      navbar.Model
	signup      signup.Model
	login       pages.Login
	helpView    helpview.Model
	commandView command.Model

	showHelp    bool
	showCommand bool
	ready       bool
}

// New creates the root model and subscribes it to session changes.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	changes, unsubscribe := d.Session.Subscribe()

	m := Model{
		keys:        k,
		layout:      ui.NewLayout(80, 24),
		session:     d.Session,
		watcher:     d.Watcher,
		changes:     changes,
		unsubscribe: unsubscribe,
		route:       nav.Home,
		navbar:      navbar.New(d.Session, d.Fetcher, k),
		signup:      signup.New(d.Signup, k, 80, 24),
		login:       pages.NewLogin(d.Session, 80),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(helpview.Commands, 80, 24),
	}
	m.history.Push(nav.Home)
	return m
}

// Route returns the page currently shown.
func (m Model) Route() nav.Route {
	return m.route
}

// History returns the routes visited so far.
func (m Model) History() []nav.Route {
	return m.history.Routes()
}

// Navbar returns the navbar state.
func (m Model) Navbar() navbar.Model {
	return m.navbar
}

// Init starts the session watcher, the session subscription and the
// navbar's first fetch.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		m.watcher.Start()
	}
	return tea.Batch(
		m.navbar.Init(),
		waitForSession(m.changes),
	)
}

// Update handles messages and dispatches to the navbar and active page.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.navbar.SetWidth(msg.Width)
		m.signup.SetSize(w, h)
		m.login.SetWidth(w)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// huh forms lay themselves out from the size message
		return m.updatePages(msg)

	case session.Change:
		var cmd tea.Cmd
		m.navbar, cmd = m.navbar.Update(msg)
		return m, tea.Batch(cmd, waitForSession(m.changes))

	case nav.NavigateMsg:
		cmd := m.navigate(msg.To)
		return m, cmd

	case command.CommandMsg:
		m.closeCommand()
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case command.CancelMsg:
		m.closeCommand()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Everything else is an async result for the navbar or a page.
	var navCmd tea.Cmd
	m.navbar, navCmd = m.navbar.Update(msg)
	next, pageCmd := m.updatePages(msg)
	return next, tea.Batch(navCmd, pageCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.shutdown()
		return m, tea.Quit
	}

	if m.showCommand {
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.navbar.Handles(msg) && !m.capturesText() && !m.pageOwns(msg) {
		var cmd tea.Cmd
		m.navbar, cmd = m.navbar.Update(msg)
		return m, cmd
	}

	if m.capturesText() {
		if key.Matches(msg, m.keys.Back) {
			return m, nav.To(nav.Home)
		}
		return m.updateActivePage(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.showCommand = true
		m.navbar = m.navbar.CloseOverlays()
		return m, m.commandView.Focus()

	case key.Matches(msg, m.keys.Signup):
		if !m.navbar.LoggedIn() {
			return m, nav.To(nav.Signup)
		}

	case key.Matches(msg, m.keys.Refresh):
		var cmd tea.Cmd
		m.navbar, cmd = m.navbar.Refresh()
		return m, cmd

	case key.Matches(msg, m.keys.Back):
		if m.route != nav.Home {
			return m, nav.To(nav.Home)
		}
		return m, nil
	}

	return m.updateActivePage(msg)
}

// pageOwns reports whether the active page binds msg itself. On the login
// page the confirm form toggles with h/l, so the navbar's login key is left
// to it unless a dropdown is open.
func (m Model) pageOwns(msg tea.KeyMsg) bool {
	return m.route == nav.Login &&
		m.navbar.Overlay() == navbar.OverlayNone &&
		key.Matches(msg, m.keys.Login)
}

// capturesText reports whether the active page needs raw keystrokes.
func (m Model) capturesText() bool {
	return m.route == nav.Signup
}

// navigate switches to route r, starting the page's form if it has one.
func (m *Model) navigate(r nav.Route) tea.Cmd {
	log.Debugf("navigate %s -> %s", m.route, r)
	m.history.Push(r)
	m.route = r
	m.showHelp = false

	switch r {
	case nav.Signup:
		return m.signup.Start()
	case nav.Login:
		return m.login.Start()
	}
	return nil
}

// updatePages delivers a non-key message to every page so that results of
// requests started on a page still land after navigating away.
func (m Model) updatePages(msg tea.Msg) (tea.Model, tea.Cmd) {
	var signupCmd, loginCmd tea.Cmd
	m.signup, signupCmd = m.signup.Update(msg)
	m.login, loginCmd = m.login.Update(msg)
	return m, tea.Batch(signupCmd, loginCmd)
}

// updateActivePage delivers a key message to the page on screen.
func (m Model) updateActivePage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route {
	case nav.Signup:
		m.signup, cmd = m.signup.Update(msg)
	case nav.Login:
		m.login, cmd = m.login.Update(msg)
	}
	return m, cmd
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	var c tea.Cmd
	switch cmd {
	case "home":
		return nav.To(nav.Home)
	case "login", "log in":
		return nav.To(nav.Login)
	case "signup", "sign up":
		return nav.To(nav.Signup)
	case "profile":
		return nav.To(nav.Profile)
	case "logout", "log out":
		if !m.navbar.LoggedIn() {
			return nil
		}
		m.navbar, c = m.navbar.Logout()
		return c
	case "notifications", "bell":
		m.navbar = m.navbar.ShowNotifications()
		return nil
	case "mark read", "mark all read":
		m.navbar, c = m.navbar.MarkAllRead()
		return c
	case "refresh":
		m.navbar, c = m.navbar.Refresh()
		return c
	case "quit", "q":
		m.shutdown()
		return tea.Quit
	default:
		log.Debugf("unknown command %q", cmd)
		return nil
	}
}

func (m *Model) closeCommand() {
	m.showCommand = false
	m.commandView.Blur()
}

// shutdown stops the watcher and ends the session subscription.
func (m *Model) shutdown() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.navbar.View()
	content := m.renderContent()

	overlay := m.navbar.Dropdown()
	if m.showCommand {
		overlay = m.commandView.View()
	}
	content = m.layout.RenderDropdown(overlay, content)

	statusBar := m.layout.RenderStatusBar(m.keyHints())
	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current route.
func (m Model) renderContent() string {
	if m.showHelp {
		return m.helpView.View()
	}

	w := m.layout.ContentWidth()
	switch m.route {
	case nav.Signup:
		return m.signup.View()
	case nav.Login:
		return m.login.View()
	case nav.Profile:
		return pages.Profile(m.navbar.LoggedIn(), m.navbar.Panel(), w)
	default:
		return pages.Home(m.navbar.LoggedIn(), w)
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch {
	case m.showHelp:
		return "? close help | esc back"
	case m.showCommand:
		return "enter execute | tab complete | esc cancel"
	}

	switch m.navbar.Overlay() {
	case navbar.OverlayNotifications:
		return "m mark all read | r refresh | b/esc close"
	case navbar.OverlayUserMenu:
		return "↑/↓ move | enter select | u/esc close"
	}

	parts := []string{m.route.Title()}
	switch m.route {
	case nav.Signup:
		parts = append(parts, "enter next/submit", "ctrl+t password", "ctrl+l log in", "esc home")
	default:
		parts = append(parts, m.helpView.ShortView())
	}
	return strings.Join(parts, " | ")
}
