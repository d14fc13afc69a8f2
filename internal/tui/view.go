package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateToday:
		content = docStyle.Render(m.todayList.View())
	case StateInbox:
		content = docStyle.Render(m.inboxList.View())
	case StateConfirmDelete:
		content = m.viewConfirm("Delete this message?")
	case StateConfirmClear:
		content = m.viewConfirm("Delete every message in the inbox?")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	titles := []string{"Today", "Inbox"}
	if m.unread > 0 {
		titles[1] = fmt.Sprintf("Inbox (%d)", m.unread)
	}

	active := m.state
	if m.state == StateConfirmDelete || m.state == StateConfirmClear {
		active = m.previousState
	}

	var tabs []string
	for i, title := range titles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	var line string
	if m.profile != nil {
		line = profileStyle.Render(fmt.Sprintf("%s · level %d · %d coins", m.profile.Name, m.profile.Level, m.profile.Currency))
	} else {
		line = profileStyle.Render("No profile yet: run 'keepup profile create NAME YYYY-MM-DD'")
	}

	switch {
	case m.err != nil:
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, dangerStyle.Render(m.err.Error()))
	case m.status != "":
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, statusStyle.Render(m.status))
	}
	return line
}

func (m Model) viewConfirm(question string) string {
	return lipgloss.Place(m.width, m.height-chromeHeight,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(question),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
