package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stackit/stackit-tui/internal/session"
)

// waitForSession blocks until the session store publishes a change and
// delivers it as a message. It must be re-issued after every change; a
// closed channel ends the loop.
func waitForSession(ch <-chan session.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return change
	}
}
