// Package inbox is the mailbox of accountability events.
package inbox

import (
	"time"

	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/storage"
)

// Backup is run before destructive operations when set.
type Backup func() error

type Inbox struct {
	store  storage.Queries
	backup Backup
	now    func() time.Time
}

type Option func(*Inbox)

// WithBackup runs fn before DeleteOne and ClearAll. A failing backup aborts the delete.
func WithBackup(fn Backup) Option {
	return func(i *Inbox) { i.backup = fn }
}

// WithClock overrides the timestamp source for appended messages.
func WithClock(now func() time.Time) Option {
	return func(i *Inbox) { i.now = now }
}

func New(store storage.Queries, opts ...Option) *Inbox {
	i := &Inbox{store: store, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Append stores msg as unread. A zero timestamp is filled from the clock.
func (i *Inbox) Append(msg models.MailboxMessage) (models.MailboxMessage, error) {
	msg.IsRead = false
	if msg.Timestamp.IsZero() {
		msg.Timestamp = i.now()
	}
	return i.store.AddMessage(msg)
}

// List returns up to limit messages, newest first. limit ≤ 0 means all.
func (i *Inbox) List(limit int) ([]models.MailboxMessage, error) {
	return i.store.GetMessages(limit)
}

// UnreadCount counts unread rows on every call.
func (i *Inbox) UnreadCount() (int, error) {
	return i.store.CountUnread()
}

func (i *Inbox) MarkAllRead() (int64, error) {
	return i.store.MarkAllRead()
}

func (i *Inbox) DeleteOne(id int64) error {
	if err := i.runBackup(); err != nil {
		return err
	}
	return i.store.DeleteMessage(id)
}

func (i *Inbox) ClearAll() (int64, error) {
	if err := i.runBackup(); err != nil {
		return 0, err
	}
	return i.store.DeleteAllMessages()
}

func (i *Inbox) runBackup() error {
	if i.backup == nil {
		return nil
	}
	return i.backup()
}
