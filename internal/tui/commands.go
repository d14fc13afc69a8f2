package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/models"
)

type dayMsg []models.ActivityInstance

type watchClosedMsg struct{}

type tickMsg time.Time

type refreshMsg struct {
	messages []models.MailboxMessage
	profile  *models.Profile
	unread   int
	err      error
}

type actionDoneMsg struct {
	status string
	err    error
}

func waitForDay(updates <-chan []models.ActivityInstance) tea.Cmd {
	return func() tea.Msg {
		instances, ok := <-updates
		if !ok {
			return watchClosedMsg{}
		}
		return dayMsg(instances)
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh re-observes today and reloads the inbox and profile. The day itself
// arrives through the watch channel.
func (m Model) refresh() tea.Cmd {
	svc, store, box := m.svc, m.store, m.inbox
	return func() tea.Msg {
		if _, err := svc.Today(); err != nil {
			return refreshMsg{err: err}
		}
		msgs, err := box.List(0)
		if err != nil {
			return refreshMsg{err: err}
		}
		unread, err := box.UnreadCount()
		if err != nil {
			return refreshMsg{err: err}
		}

		var profile *models.Profile
		p, err := store.GetProfile()
		switch {
		case err == nil:
			profile = &p
		case !apperrors.Is(err, apperrors.ErrNotFound):
			return refreshMsg{err: err}
		}
		return refreshMsg{messages: msgs, profile: profile, unread: unread}
	}
}

func (m Model) complete(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		r, err := svc.Complete(id, svc.Now())
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Completed: +%d currency, +%d level", r.CurrencyDelta, r.LevelDelta)}
	}
}

func (m Model) skip(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.Skip(id, svc.Now()); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Skipped"}
	}
}

func (m Model) markRead() tea.Cmd {
	box := m.inbox
	return func() tea.Msg {
		n, err := box.MarkAllRead()
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Marked %d message(s) as read", n)}
	}
}

func (m Model) deleteMessage(id int64) tea.Cmd {
	box := m.inbox
	return func() tea.Msg {
		if err := box.DeleteOne(id); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Message deleted"}
	}
}

func (m Model) clearInbox() tea.Cmd {
	box := m.inbox
	return func() tea.Msg {
		n, err := box.ClearAll()
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Deleted %d message(s)", n)}
	}
}
