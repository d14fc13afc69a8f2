package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/keepup/internal/tui/components/activities"
	"github.com/julianstephens/keepup/internal/tui/components/messages"
)

// chromeHeight is the space taken by tabs, status line and help.
const chromeHeight = 5

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.todayList.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		m.inboxList.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		return m, nil

	case dayMsg:
		m.todayList.SetInstances(msg, m.svc.Now())
		return m, waitForDay(m.updates)

	case watchClosedMsg:
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())

	case refreshMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.inboxList.SetMessages(msg.messages)
		m.profile = msg.profile
		m.unread = msg.unread
		return m, nil

	case actionDoneMsg:
		m.status = msg.status
		m.err = msg.err
		return m, m.refresh()

	case activities.CompleteMsg:
		return m, m.complete(msg.ID)

	case activities.SkipMsg:
		return m, m.skip(msg.ID)

	case messages.MarkReadMsg:
		return m, m.markRead()

	case messages.DeleteMsg:
		m.messageToDeleteID = msg.ID
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil

	case messages.ClearMsg:
		m.previousState = m.state
		m.state = StateConfirmClear
		return m, nil

	case tea.KeyMsg:
		if m.state == StateConfirmDelete || m.state == StateConfirmClear {
			return m.updateConfirm(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			m.err = nil
			return m, m.refresh()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.todayList, cmd = m.todayList.Update(msg)
	case StateInbox:
		m.inboxList, cmd = m.inboxList.Update(msg)
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirming := m.state
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.state = m.previousState
		if confirming == StateConfirmDelete {
			return m, m.deleteMessage(m.messageToDeleteID)
		}
		return m, m.clearInbox()
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.state = m.previousState
	}
	return m, nil
}
