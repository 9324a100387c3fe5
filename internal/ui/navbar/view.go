package navbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stackit/stackit-tui/internal/model"
	"github.com/stackit/stackit-tui/internal/notify"
	"github.com/stackit/stackit-tui/internal/theme"
	"github.com/stackit/stackit-tui/internal/ui"
)

const (
	brand         = "StackIt"
	dropdownWidth = 44
	bellIcon      = "🔔"
	avatarLabel   = "U"
)

// View renders the header line.
func (m Model) View() string {
	layout := ui.NewLayout(m.width, 1)
	return layout.RenderHeader(brand, m.controls())
}

// controls renders the right side of the header.
func (m Model) controls() string {
	bell := bellIcon
	if text, ok := m.panel.Badge(); ok {
		bell += " " + theme.BadgeStyle.Render(text)
	}
	if !m.loggedIn {
		return bell + "  [l] Login"
	}
	return bell + "  " + theme.AvatarStyle.Render(avatarLabel)
}

// Dropdown renders the open overlay, or "" when none is open.
func (m Model) Dropdown() string {
	switch m.overlays.Open() {
	case OverlayNotifications:
		return theme.OverlayStyle.Width(dropdownWidth).Render(m.notificationsView())
	case OverlayUserMenu:
		return theme.OverlayStyle.Render(m.menuView())
	default:
		return ""
	}
}

func (m Model) notificationsView() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Notifications"))
	b.WriteString("\n")

	switch m.panel.Status() {
	case notify.StatusLoading:
		b.WriteString(theme.DimmedStyle.Render("Loading..."))
		b.WriteString("\n")
	case notify.StatusFailed:
		b.WriteString(theme.ErrorStyle.Render("Couldn't load notifications"))
		b.WriteString("\n")
	}

	items := m.panel.Items()
	if len(items) == 0 && m.panel.Status() != notify.StatusLoading {
		b.WriteString(theme.DimmedStyle.Render("No notifications"))
		b.WriteString("\n")
	}
	for _, n := range items {
		b.WriteString(renderNotification(n))
		b.WriteString("\n")
	}

	if m.panel.UnreadCount() > 0 {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("m mark all as read"))
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderNotification(n model.Notification) string {
	ts := ""
	if !n.Timestamp.IsZero() {
		ts = n.Timestamp.Local().Format("Jan 2 15:04")
	}

	if n.Read {
		return theme.DimmedStyle.Render(fmt.Sprintf("  %s", n.Message)) +
			"\n" + theme.DimmedStyle.Render("  "+ts)
	}
	return theme.UnreadStyle.Render(fmt.Sprintf("• %s", n.Message)) +
		"\n" + theme.DimmedStyle.Render("  "+ts)
}

func (m Model) menuView() string {
	rows := make([]string, len(menuItems))
	for i, item := range menuItems {
		if i == m.menuCursor {
			rows[i] = theme.SelectedItemStyle.Render(item.Label())
		} else {
			rows[i] = theme.ListItemStyle.Render(item.Label())
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
