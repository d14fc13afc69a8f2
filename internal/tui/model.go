package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/keepup/internal/engine"
	"github.com/julianstephens/keepup/internal/inbox"
	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/storage"
	"github.com/julianstephens/keepup/internal/tui/components/activities"
	"github.com/julianstephens/keepup/internal/tui/components/messages"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateInbox
	StateConfirmDelete
	StateConfirmClear
)

const tabCount = 2

// refreshInterval re-observes the day so windows that close while the TUI is
// open expire without a keypress.
const refreshInterval = 30 * time.Second

type Model struct {
	svc           *engine.Service
	store         storage.Queries
	inbox         *inbox.Inbox
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	todayList     activities.Model
	inboxList     messages.Model

	updates <-chan []models.ActivityInstance
	cancel  context.CancelFunc

	profile           *models.Profile
	unread            int
	status            string
	err               error
	messageToDeleteID int64
	quitting          bool
	width             int
	height            int
}

func NewModel(svc *engine.Service, store storage.Queries, box *inbox.Inbox) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		svc:       svc,
		store:     store,
		inbox:     box,
		state:     StateToday,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		todayList: activities.New(0, 0),
		inboxList: messages.New(0, 0),
		updates:   svc.Watch(ctx, svc.Now),
		cancel:    cancel,
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		ak := activities.DefaultKeyMap()
		keys = append(keys, ak.Complete, ak.Skip)
	case StateInbox:
		mk := messages.DefaultKeyMap()
		keys = append(keys, mk.MarkRead, mk.Delete, mk.Clear)
	case StateConfirmDelete, StateConfirmClear:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		ak := activities.DefaultKeyMap()
		actions = []key.Binding{ak.Complete, ak.Skip}
	case StateInbox:
		mk := messages.DefaultKeyMap()
		actions = []key.Binding{mk.MarkRead, mk.Delete, mk.Clear}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForDay(m.updates), m.refresh(), tick())
}
