package signup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit/stackit-tui/internal/api"
	"github.com/stackit/stackit-tui/internal/keys"
	"github.com/stackit/stackit-tui/internal/model"
	"github.com/stackit/stackit-tui/internal/nav"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	err   error
	calls []model.SignupForm
}

func (f *fakeSubmitter) Signup(_ context.Context, form model.SignupForm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, form)
	return f.err
}

func (f *fakeSubmitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// collect runs cmd and returns the messages it produces, flattening
// batches. Commands that block, such as timers, are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}

func routes(msgs []tea.Msg) []nav.Route {
	var out []nav.Route
	for _, msg := range msgs {
		if n, ok := msg.(nav.NavigateMsg); ok {
			out = append(out, n.To)
		}
	}
	return out
}

func submitted(t *testing.T, msgs []tea.Msg) submittedMsg {
	t.Helper()
	for _, msg := range msgs {
		if s, ok := msg.(submittedMsg); ok {
			return s
		}
	}
	t.Fatal("no signup request was made")
	return submittedMsg{}
}

// submitAndResolve submits form and delivers the request's outcome,
// returning every message produced along the way.
func submitAndResolve(t *testing.T, m Model, form model.SignupForm) (Model, []tea.Msg) {
	t.Helper()
	m, cmd := m.Submit(form)
	require.True(t, m.Loading())

	msgs := collect(cmd)
	m, cmd = m.Update(submitted(t, msgs))
	assert.False(t, m.Loading())

	return m, append(msgs, collect(cmd)...)
}

// drive delivers msg and feeds the messages its commands produce back into
// the model until nothing is left to deliver.
func drive(m Model, msg tea.Msg) (Model, []tea.Msg) {
	var seen []tea.Msg
	queue := []tea.Msg{msg}
	for i := 0; len(queue) > 0 && i < 100; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(queue[0])
		queue = queue[1:]
		for _, out := range collect(cmd) {
			if out == nil {
				continue
			}
			if _, ok := out.(spinner.TickMsg); ok {
				continue
			}
			seen = append(seen, out)
			queue = append(queue, out)
		}
	}
	return m, seen
}

func newModel(s Submitter) Model {
	m := New(s, keys.DefaultKeyMap(), 80, 24)
	m.Start()
	return m
}

var validForm = model.SignupForm{Email: "a@b.com", Username: "bob", Password: "longenough1"}

func TestSubmit_ShortPasswordIsRejectedLocally(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newModel(sub)

	m, cmd := m.Submit(model.SignupForm{Email: "a@b.com", Username: "bob", Password: "short"})
	msgs := collect(cmd)

	assert.False(t, m.Loading())
	require.NotNil(t, m.Toast())
	assert.True(t, m.Toast().Destructive)
	assert.Equal(t, "Validation error", m.Toast().Title)
	assert.Equal(t, "Password must be at least 8 characters", m.Toast().Description)
	assert.Empty(t, routes(msgs))
	assert.Equal(t, 0, sub.Calls())
}

func TestSubmit_FirstViolationWins(t *testing.T) {
	m := newModel(&fakeSubmitter{})

	m, _ = m.Submit(model.SignupForm{Email: "nope", Username: "", Password: "short"})
	require.NotNil(t, m.Toast())
	assert.Equal(t, "Invalid email", m.Toast().Description)

	m, _ = m.Submit(model.SignupForm{Email: "a@b.com", Username: "", Password: "short"})
	assert.Equal(t, "Username is required", m.Toast().Description)
}

func TestSubmit_SuccessNavigatesToLoginOnce(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newModel(sub)

	m, msgs := submitAndResolve(t, m, validForm)

	assert.Equal(t, []nav.Route{nav.Login}, routes(msgs))
	assert.Equal(t, 1, sub.Calls())
	assert.Equal(t, validForm, sub.calls[0])
	require.NotNil(t, m.Toast())
	assert.False(t, m.Toast().Destructive)
	assert.Equal(t, "Account created! You can log in now.", m.Toast().Title)
	assert.Equal(t, model.SignupForm{}, m.Values())
}

func TestSubmit_ServerMessageIsShown(t *testing.T) {
	sub := &fakeSubmitter{err: &api.Error{
		Method: http.MethodPost, Path: api.SignupPath,
		Status: http.StatusConflict, Message: "exists",
	}}
	m := newModel(sub)

	m, msgs := submitAndResolve(t, m, validForm)

	assert.Empty(t, routes(msgs))
	require.NotNil(t, m.Toast())
	assert.True(t, m.Toast().Destructive)
	assert.Equal(t, "exists", m.Toast().Description)
}

func TestSubmit_RejectionWithoutMessage(t *testing.T) {
	sub := &fakeSubmitter{err: &api.Error{Status: http.StatusBadRequest}}
	m := newModel(sub)

	m, msgs := submitAndResolve(t, m, validForm)

	assert.Empty(t, routes(msgs))
	assert.Equal(t, "Signup failed", m.Toast().Description)
}

func TestSubmit_TransportError(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("dial tcp: connection refused")}
	m := newModel(sub)

	m, msgs := submitAndResolve(t, m, validForm)

	assert.Empty(t, routes(msgs))
	assert.Equal(t, "Something went wrong", m.Toast().Description)
}

func TestSubmit_IgnoredWhileLoading(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newModel(sub)

	m, first := m.Submit(validForm)
	m, second := m.Submit(validForm)
	assert.Nil(t, second)

	collect(first)
	assert.Equal(t, 1, sub.Calls())

	// keys are swallowed too
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Nil(t, cmd)
	assert.False(t, m.showPassword)
}

func TestTogglePassword(t *testing.T) {
	m := newModel(&fakeSubmitter{})
	assert.False(t, m.showPassword)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.True(t, m.showPassword)
	assert.Contains(t, m.View(), "hide password")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.False(t, m.showPassword)
}

func TestFooterLinkNavigatesToLogin(t *testing.T) {
	m := newModel(&fakeSubmitter{})
	assert.Contains(t, m.View(), "Already have an account?")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, []nav.Route{nav.Login}, routes(collect(cmd)))
}

func TestToastExpires(t *testing.T) {
	m := newModel(&fakeSubmitter{})
	m, _ = m.Submit(model.SignupForm{})
	require.NotNil(t, m.Toast())

	stale := toastExpiredMsg{seq: m.toastSeq - 1}
	m, _ = m.Update(stale)
	assert.NotNil(t, m.Toast())

	m, _ = m.Update(toastExpiredMsg{seq: m.toastSeq})
	assert.Nil(t, m.Toast())
}

func TestSubmit_AgainstAPI(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"exists"}`))
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, api.Options{HTTPClient: srv.Client()})
	m := newModel(client)

	m, msgs := submitAndResolve(t, m, validForm)

	assert.Equal(t, int32(1), hits.Load())
	assert.Empty(t, routes(msgs))
	assert.Equal(t, "exists", m.Toast().Description)
}

func TestForm_TypingAndEnterSubmits(t *testing.T) {
	sub := &fakeSubmitter{}
	m := newModel(sub)

	var msgs []tea.Msg
	for _, value := range []string{validForm.Email, validForm.Username, validForm.Password} {
		var out []tea.Msg
		m, out = drive(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)})
		msgs = append(msgs, out...)
		m, out = drive(m, tea.KeyMsg{Type: tea.KeyEnter})
		msgs = append(msgs, out...)
	}

	require.Equal(t, 1, sub.Calls())
	assert.Equal(t, validForm, sub.calls[0])
	assert.Equal(t, []nav.Route{nav.Login}, routes(msgs))
	assert.False(t, m.Loading())
	require.NotNil(t, m.Toast())
	assert.Equal(t, "Account created! You can log in now.", m.Toast().Title)
	assert.Equal(t, model.SignupForm{}, m.Values())
}
