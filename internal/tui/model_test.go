package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/keepup/internal/calendar"
	"github.com/julianstephens/keepup/internal/engine"
	"github.com/julianstephens/keepup/internal/inbox"
	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/reward"
	"github.com/julianstephens/keepup/internal/storage/sqlite"
	"github.com/julianstephens/keepup/internal/tui/components/messages"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := calendar.FixedClock{T: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)}
	svc := engine.New(store, reward.Policy{}, engine.WithClock(clock))
	m := NewModel(svc, store, inbox.New(store))
	t.Cleanup(m.cancel)
	return m
}

func TestTabsCycle(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.state != StateInbox {
		t.Fatalf("expected inbox tab, got %v", m.state)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.state != StateToday {
		t.Fatalf("expected today tab, got %v", m.state)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(Model)
	if m.state != StateInbox {
		t.Fatalf("expected inbox tab after shift+tab, got %v", m.state)
	}
}

func TestConfirmDelete_Cancel(t *testing.T) {
	m := newTestModel(t)
	m.state = StateInbox

	next, _ := m.Update(messages.DeleteMsg{ID: 42})
	m = next.(Model)
	if m.state != StateConfirmDelete {
		t.Fatalf("expected confirm state, got %v", m.state)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = next.(Model)
	if m.state != StateInbox {
		t.Errorf("expected to return to inbox, got %v", m.state)
	}
	if cmd != nil {
		t.Error("cancel should not run a command")
	}
}

func TestConfirmClear_Accept(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.inbox.Append(models.MailboxMessage{Kind: models.MessagePenalty, Message: "missed"}); err != nil {
		t.Fatal(err)
	}
	m.state = StateInbox

	next, _ := m.Update(messages.ClearMsg{})
	m = next.(Model)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = next.(Model)
	if m.state != StateInbox {
		t.Errorf("expected to return to inbox, got %v", m.state)
	}
	if cmd == nil {
		t.Fatal("expected clear command")
	}

	done, ok := cmd().(actionDoneMsg)
	if !ok {
		t.Fatalf("expected actionDoneMsg")
	}
	if done.err != nil {
		t.Fatalf("clear failed: %v", done.err)
	}
	n, err := m.inbox.UnreadCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected empty inbox, got %d unread", n)
	}
}

func TestRefreshLoadsInbox(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.inbox.Append(models.MailboxMessage{Kind: models.MessagePenalty, Message: "missed"}); err != nil {
		t.Fatal(err)
	}

	msg, ok := m.refresh()().(refreshMsg)
	if !ok {
		t.Fatal("expected refreshMsg")
	}
	if msg.err != nil {
		t.Fatalf("refresh failed: %v", msg.err)
	}
	next, _ := m.Update(msg)
	m = next.(Model)
	if m.unread != 1 {
		t.Errorf("expected 1 unread, got %d", m.unread)
	}
	if m.profile != nil {
		t.Error("expected no profile")
	}
}
