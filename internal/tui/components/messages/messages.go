package messages

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/keepup/internal/models"
)

type MarkReadMsg struct{}

type DeleteMsg struct {
	ID int64
}

type ClearMsg struct{}

type Item struct {
	Message models.MailboxMessage
}

func (i Item) Title() string {
	if !i.Message.IsRead {
		return "● " + i.Message.Message
	}
	return "  " + i.Message.Message
}

func (i Item) Description() string {
	m := i.Message
	desc := fmt.Sprintf("%s | %s", m.Timestamp.Local().Format("Mon Jan 2 15:04"), m.Kind)
	if m.Kind == models.MessagePenalty {
		desc += fmt.Sprintf(" | level -%d", m.LevelDrop)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Message.Message }

type KeyMap struct {
	MarkRead key.Binding
	Delete   key.Binding
	Clear    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		MarkRead: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "mark all read"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear all"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Inbox"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.MarkRead, keys.Delete, keys.Clear}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.MarkRead, keys.Delete, keys.Clear}
	}

	return Model{list: l, keys: keys}
}

func (m *Model) SetMessages(msgs []models.MailboxMessage) {
	items := make([]list.Item, len(msgs))
	for i, msg := range msgs {
		items[i] = Item{Message: msg}
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.MarkRead):
			return m, func() tea.Msg { return MarkReadMsg{} }
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteMsg{ID: i.Message.ID} }
			}
		case key.Matches(msg, m.keys.Clear):
			if len(m.list.Items()) > 0 {
				return m, func() tea.Msg { return ClearMsg{} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Inbox is empty. Keep it that way."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
