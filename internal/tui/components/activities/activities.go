package activities

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/keepup/internal/models"
)

type CompleteMsg struct {
	ID string
}

type SkipMsg struct {
	ID string
}

type Item struct {
	Instance models.ActivityInstance
	Now      time.Time
}

func (i Item) Title() string {
	return statusIcon(i.Instance.Status) + " " + i.Instance.Name
}

func (i Item) Description() string {
	inst := i.Instance
	desc := fmt.Sprintf("%s-%s | %s", inst.StartTime, inst.EndTime, inst.Status)
	if inst.Status == models.StatusPending {
		switch {
		case i.Now.Before(inst.WindowStart):
			desc += fmt.Sprintf(" | starts in %s", inst.WindowStart.Sub(i.Now).Round(time.Minute))
		case inst.Open(i.Now):
			desc += fmt.Sprintf(" | %s left", inst.WindowEnd.Sub(i.Now).Round(time.Minute))
		}
	}
	if inst.Scheme == models.SchemeParity {
		desc += " | alternating"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Instance.Name }

func statusIcon(s models.InstanceStatus) string {
	switch s {
	case models.StatusCompleted:
		return "✅"
	case models.StatusSkipped:
		return "⏭️"
	case models.StatusExpired:
		return "❌"
	default:
		return "⏳"
	}
}

type KeyMap struct {
	Complete key.Binding
	Skip     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Complete, keys.Skip}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Complete, keys.Skip}
	}

	return Model{list: l, keys: keys}
}

// SetInstances replaces the list, keeping the cursor where it was.
func (m *Model) SetInstances(instances []models.ActivityInstance, now time.Time) {
	items := make([]list.Item, len(instances))
	for i, inst := range instances {
		items[i] = Item{Instance: inst, Now: now}
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}
}

func (m Model) Len() int {
	return len(m.list.Items())
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
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Instance.Status == models.StatusPending {
				return m, func() tea.Msg { return CompleteMsg{ID: i.Instance.ID} }
			}
		case key.Matches(msg, m.keys.Skip):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Instance.Status == models.StatusPending {
				return m, func() tea.Msg { return SkipMsg{ID: i.Instance.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Nothing scheduled today.\n  Assign a set with 'keepup assign weekly DAY SET_ID'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
