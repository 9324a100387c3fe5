package pages

import (
	"fmt"
	"strings"

	"github.com/stackit/stackit-tui/internal/notify"
	"github.com/stackit/stackit-tui/internal/theme"
)

// Profile renders the signed-in user's profile page.
func Profile(loggedIn bool, panel notify.Panel, width int) string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Profile"))
	b.WriteString("\n")

	if !loggedIn {
		b.WriteString("You are not logged in.\n")
		b.WriteString(theme.HelpStyle.Render("press l to log in"))
		return theme.PanelStyle.Width(pageWidth(width)).Render(b.String())
	}

	b.WriteString("Signed in\n\n")
	fmt.Fprintf(&b, "Notifications: %d (%d unread)\n", len(panel.Items()), panel.UnreadCount())
	fmt.Fprintf(&b, "Notification status: %s\n", panel.Status())

	return theme.PanelStyle.Width(pageWidth(width)).Render(b.String())
}
