// Package signup is the account creation page: a form validated locally
// before it is posted to the StackIt API.
package signup

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	log "github.com/sirupsen/logrus"

	"github.com/stackit/stackit-tui/internal/api"
	"github.com/stackit/stackit-tui/internal/keys"
	"github.com/stackit/stackit-tui/internal/model"
	"github.com/stackit/stackit-tui/internal/nav"
)

// Toast messages.
const (
	titleValidation  = "Validation error"
	titleError       = "Error"
	titleCreated     = "Account created! You can log in now."
	fallbackRejected = "Signup failed"
	fallbackNetwork  = "Something went wrong"
)

const (
	submitTimeout = 30 * time.Second
	toastTTL      = 5 * time.Second
)

// Submitter creates an account. *api.Client implements it.
type Submitter interface {
	Signup(ctx context.Context, form model.SignupForm) error
}

// Toast is a transient notice shown above the form.
type Toast struct {
	Title       string
	Description string
	Destructive bool
}

// submittedMsg carries the outcome of a signup request.
type submittedMsg struct {
	err error
}

// toastExpiredMsg hides the toast with the given sequence number.
type toastExpiredMsg struct {
	seq int
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	username string
	password string
}

// Model is the Bubble Tea model for the signup page.
type Model struct {
	submitter Submitter
	keys      *keys.KeyMap

	form     *huh.Form
	password *huh.Input
	fb       *formBindings

	spinner      spinner.Model
	loading      bool
	showPassword bool

	toast    *Toast
	toastSeq int

	width, height int
}

// New creates a signup page that submits through s.
func New(s Submitter, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		submitter: s,
		keys:      k,
		fb:        &formBindings{},
		spinner:   sp,
		width:     width,
		height:    height,
	}
}

// Start builds a fresh form. Values typed earlier are kept.
func (m *Model) Start() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

// Loading reports whether a signup request is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Toast returns the visible toast, if any.
func (m Model) Toast() *Toast {
	return m.toast
}

// Values returns the form as currently typed.
func (m Model) Values() model.SignupForm {
	return model.SignupForm{
		Email:    m.fb.email,
		Username: m.fb.username,
		Password: m.fb.password,
	}
}

// Update handles messages for the signup page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case submittedMsg:
		return m.finish(msg.err)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		// the form is locked while the request is in flight
		if m.loading {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.TogglePassword):
			m.TogglePassword()
			return m, nil
		case key.Matches(msg, m.keys.GoToLogin):
			return m, nav.To(nav.Login)
		}
	}

	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.Submit(m.Values())
	case huh.StateAborted:
		restart := m.Start()
		return m, tea.Batch(restart, nav.To(nav.Home))
	}

	return m, cmd
}

// Submit validates form and, when it is valid, posts it. Submissions made
// while a request is in flight are ignored.
func (m Model) Submit(form model.SignupForm) (Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	if err := form.Validate(); err != nil {
		description := err.Error()
		if ve, ok := model.AsValidationError(err); ok {
			description = ve.Message
		}
		toast := m.showToast(Toast{Title: titleValidation, Description: description, Destructive: true})
		restart := m.Start()
		return m, tea.Batch(toast, restart)
	}

	m.loading = true
	s := m.submitter
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
			defer cancel()
			return submittedMsg{err: s.Signup(ctx, form)}
		},
	)
}

// finish clears the loading state and reports the outcome.
func (m Model) finish(err error) (Model, tea.Cmd) {
	m.loading = false

	if err == nil {
		toast := m.showToast(Toast{Title: titleCreated})
		m.fb = &formBindings{}
		restart := m.Start()
		return m, tea.Batch(toast, restart, nav.To(nav.Login))
	}

	log.Warnf("signup failed: %s", err)

	description := fallbackNetwork
	if _, ok := api.AsError(err); ok {
		description = api.MessageOf(err, fallbackRejected)
	}
	toast := m.showToast(Toast{Title: titleError, Description: description, Destructive: true})
	restart := m.Start()
	return m, tea.Batch(toast, restart)
}

// TogglePassword switches the password field between masked and plain.
func (m *Model) TogglePassword() {
	m.showPassword = !m.showPassword
	if m.password != nil {
		m.password.EchoMode(m.echoMode())
	}
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) showToast(t Toast) tea.Cmd {
	m.toastSeq++
	m.toast = &t
	seq := m.toastSeq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m *Model) buildForm() *huh.Form {
	m.password = huh.NewInput().
		Title("Password").
		Placeholder("At least 8 characters").
		EchoMode(m.echoMode()).
		Value(&m.fb.password)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email address").
				Placeholder("you@example.com").
				Value(&m.fb.email),
			huh.NewInput().
				Title("Username").
				Placeholder("Choose a username").
				Value(&m.fb.username),
			m.password,
		),
	).WithShowHelp(false).WithWidth(m.formWidth())
}

func (m Model) echoMode() huh.EchoMode {
	if m.showPassword {
		return huh.EchoModeNormal
	}
	return huh.EchoModePassword
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	if w > 72 {
		w = 72
	}
	return w
}
