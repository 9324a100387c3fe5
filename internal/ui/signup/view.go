package signup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stackit/stackit-tui/internal/theme"
)

// View renders the signup page.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("✎ Sign up for StackIt"))
	b.WriteString("\n")

	if m.toast != nil {
		b.WriteString(m.renderToast())
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(m.spinner.View() + " Creating account...")
		b.WriteString("\n")
	} else if m.form != nil {
		b.WriteString(m.form.View())
		b.WriteString("\n")
	}

	pwHint := "show password"
	if m.showPassword {
		pwHint = "hide password"
	}
	b.WriteString(theme.HelpStyle.Render("enter Create Account · ctrl+t " + pwHint))
	b.WriteString("\n\n")

	b.WriteString("Already have an account? ")
	b.WriteString(theme.LinkStyle.Render("Log in"))
	b.WriteString(theme.HelpStyle.Render(" (ctrl+l)"))

	return theme.PanelStyle.
		Width(m.formWidth() + 4).
		Render(b.String())
}

func (m Model) renderToast() string {
	t := m.toast
	content := t.Title
	if t.Description != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, t.Title, t.Description)
	}
	return theme.ToastStyle(t.Destructive).Render(content)
}
