// Package nav defines the client's routes and the message used to move
// between them.
package nav

import tea "github.com/charmbracelet/bubbletea"

// Route is a navigation target, named after the web paths it mirrors.
type Route string

const (
	Home    Route = "/"
	Login   Route = "/login"
	Profile Route = "/profile"
	Signup  Route = "/signup"
)

// Title returns the page heading for a route.
func (r Route) Title() string {
	switch r {
	case Home:
		return "Home"
	case Login:
		return "Log in"
	case Profile:
		return "Profile"
	case Signup:
		return "Sign up"
	default:
		return string(r)
	}
}

// NavigateMsg asks the root model to switch to another route.
type NavigateMsg struct {
	To Route
}

// To returns a command that emits a NavigateMsg for r.
func To(r Route) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{To: r}
	}
}

// History records every route visited, oldest first.
type History struct {
	routes []Route
}

// Push appends r to the history.
func (h *History) Push(r Route) {
	h.routes = append(h.routes, r)
}

// Current returns the most recent route, or Home if nothing was visited.
func (h *History) Current() Route {
	if len(h.routes) == 0 {
		return Home
	}
	return h.routes[len(h.routes)-1]
}

// Routes returns a copy of the visited routes.
func (h *History) Routes() []Route {
	out := make([]Route, len(h.routes))
	copy(out, h.routes)
	return out
}
