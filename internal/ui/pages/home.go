// Package pages holds the simple routed pages: home, login and profile.
package pages

import (
	"strings"

	"github.com/stackit/stackit-tui/internal/theme"
)

// Home renders the landing page.
func Home(loggedIn bool, width int) string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Welcome to StackIt"))
	b.WriteString("\n")
	b.WriteString("Ask questions, share answers.\n\n")

	if loggedIn {
		b.WriteString(theme.HelpStyle.Render("b notifications · u user menu · : commands"))
	} else {
		b.WriteString(theme.HelpStyle.Render("l log in · s sign up · : commands"))
	}

	return theme.PanelStyle.Width(pageWidth(width)).Render(b.String())
}

func pageWidth(width int) int {
	w := width - 4
	if w < 30 {
		w = 30
	}
	return w
}
