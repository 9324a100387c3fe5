package pages

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	log "github.com/sirupsen/logrus"

	"github.com/stackit/stackit-tui/internal/nav"
	"github.com/stackit/stackit-tui/internal/session"
	"github.com/stackit/stackit-tui/internal/theme"
)

// loginDoneMsg reports the outcome of writing the session flag.
type loginDoneMsg struct {
	err error
}

// loginBindings holds the confirm value on the heap so that huh's Value()
// pointer remains valid across Bubble Tea model copies.
type loginBindings struct {
	confirmed bool
}

// Login is the log-in page. Real credential checks happen in the external
// authentication service; this page only records the signed-in flag.
type Login struct {
	session *session.Store
	form    *huh.Form
	lb      *loginBindings
	err     error
	width   int
}

// NewLogin creates the login page.
func NewLogin(s *session.Store, width int) Login {
	return Login{session: s, lb: &loginBindings{}, width: width}
}

// Start builds a fresh confirm form.
func (l *Login) Start() tea.Cmd {
	l.lb.confirmed = true
	l.err = nil
	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Log in to StackIt?").
				Affirmative("Log in").
				Negative("Cancel").
				Value(&l.lb.confirmed),
		),
	).WithShowHelp(false).WithWidth(pageWidth(l.width) - 4)
	return l.form.Init()
}

// SetWidth updates the page width.
func (l *Login) SetWidth(width int) {
	l.width = width
}

// Update handles messages for the login page.
func (l Login) Update(msg tea.Msg) (Login, tea.Cmd) {
	if done, ok := msg.(loginDoneMsg); ok {
		if done.err != nil {
			log.Errorf("logging in: %s", done.err)
			restart := l.Start()
			l.err = done.err
			return l, restart
		}
		return l, nav.To(nav.Home)
	}

	if l.form == nil {
		return l, nil
	}

	mdl, cmd := l.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		l.form = f
	}

	switch l.form.State {
	case huh.StateCompleted:
		l.form = nil
		if !l.lb.confirmed {
			return l, nav.To(nav.Home)
		}
		return l, l.login()
	case huh.StateAborted:
		l.form = nil
		return l, nav.To(nav.Home)
	}
	return l, cmd
}

func (l Login) login() tea.Cmd {
	s := l.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return loginDoneMsg{err: s.Login(ctx)}
	}
}

// View renders the login page.
func (l Login) View() string {
	content := theme.TitleStyle.Render("Log in") + "\n"
	if l.err != nil {
		content += theme.ErrorStyle.Render("Couldn't log in: "+l.err.Error()) + "\n"
	}
	if l.form != nil {
		content += l.form.View() + "\n"
	}
	content += "\n" + theme.HelpStyle.Render("No account yet? press s to sign up")
	return theme.PanelStyle.Width(pageWidth(l.width)).Render(content)
}
